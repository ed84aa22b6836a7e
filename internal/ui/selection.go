// Package ui implements the terminal genus selection dialog and the
// large-map confirmation prompt.
package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/session"
)

const listHeight = 10

type focus int

const (
	focusGenus focus = iota
	focusLanguage
	focusRun
	focusExit
	focusCount
)

type queriedMsg struct {
	sel session.Selection
	err error
}

type renderedMsg struct {
	target  string
	markers int
	err     error
}

// SelectionModel is the top-level dialog. It lists the genus names of the
// current language and the languages, and runs queries through the session.
// After a map is shown the dialog stays open with the same genus selected.
type SelectionModel struct {
	ctx     context.Context
	session *session.Session
	help    help.Model

	focus     focus
	names     []string
	genusIdx  int
	offset    int
	languages []genus.Language
	langIdx   int

	busy    bool
	confirm *ConfirmModel
	pending session.Selection
	status  string
	err     error
}

// NewSelectionModel builds the dialog around s. ctx bounds queries and renders.
func NewSelectionModel(ctx context.Context, s *session.Session) SelectionModel {
	m := SelectionModel{
		ctx:       ctx,
		session:   s,
		help:      help.New(),
		languages: s.Languages(),
	}
	m.langIdx = max(slices.Index(m.languages, s.Language()), 0)
	m.syncNames()
	return m
}

// Err is the fatal error that ended the dialog, if any.
func (m SelectionModel) Err() error { return m.err }

// Busy reports whether a query or render is in flight.
func (m SelectionModel) Busy() bool { return m.busy }

// Status is the last informational message.
func (m SelectionModel) Status() string { return m.status }

// Confirming reports whether the confirmation prompt is shown.
func (m SelectionModel) Confirming() bool { return m.confirm != nil }

func (m SelectionModel) Init() tea.Cmd { return nil }

func (m SelectionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case queriedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		if m.session.NeedsConfirmation(len(msg.sel.Markers)) {
			c := NewConfirmModel(len(msg.sel.Markers))
			m.confirm = &c
			m.pending = msg.sel
			return m, nil
		}
		return m, m.render(msg.sel)

	case ConfirmedMsg:
		m.confirm = nil
		if msg.Accepted {
			return m, m.render(m.pending)
		}
		m.session.Decline(m.pending)
		m.busy = false
		m.status = fmt.Sprintf("Cancelled: %d trees not displayed.", len(m.pending.Markers))
		return m, nil

	case renderedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.status = fmt.Sprintf("Opened %s (%d trees).", msg.target, msg.markers)
		return m, nil

	case tea.KeyMsg:
		if m.confirm != nil {
			c, cmd := m.confirm.Update(msg)
			m.confirm = &c
			return m, cmd
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m SelectionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Next):
		m.focus = (m.focus + 1) % focusCount
	case key.Matches(msg, keys.Prev):
		m.focus = (m.focus + focusCount - 1) % focusCount
	case key.Matches(msg, keys.Run):
		return m.run()
	case key.Matches(msg, keys.Enter):
		if m.focus == focusExit {
			return m, tea.Quit
		}
		return m.run()
	case key.Matches(msg, keys.Up):
		return m.move(-1)
	case key.Matches(msg, keys.Down):
		return m.move(1)
	}
	return m, nil
}

func (m SelectionModel) move(delta int) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusGenus:
		if len(m.names) == 0 {
			return m, nil
		}
		idx := clamp(m.genusIdx+delta, 0, len(m.names)-1)
		if err := m.session.SelectGenus(m.names[idx]); err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.genusIdx = idx
		m.scroll()
	case focusLanguage:
		idx := clamp(m.langIdx+delta, 0, len(m.languages)-1)
		if idx == m.langIdx {
			return m, nil
		}
		if err := m.session.SwitchLanguage(m.languages[idx]); err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.langIdx = idx
		m.syncNames()
	}
	return m, nil
}

func (m SelectionModel) run() (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = fmt.Sprintf("Searching %s trees...", m.session.Genus())
	s, ctx := m.session, m.ctx
	return m, func() tea.Msg {
		sel, err := s.Query(ctx)
		return queriedMsg{sel: sel, err: err}
	}
}

func (m SelectionModel) render(sel session.Selection) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		target, err := s.Render(ctx, sel)
		return renderedMsg{target: target, markers: len(sel.Markers), err: err}
	}
}

// syncNames reloads the genus list for the current language and moves the
// cursor to the session's genus.
func (m *SelectionModel) syncNames() {
	m.names = m.session.Names()
	m.genusIdx = max(slices.Index(m.names, m.session.Genus()), 0)
	m.scroll()
}

func (m *SelectionModel) scroll() {
	if m.genusIdx < m.offset {
		m.offset = m.genusIdx
	}
	if m.genusIdx >= m.offset+listHeight {
		m.offset = m.genusIdx - listHeight + 1
	}
}

func (m SelectionModel) View() string {
	if m.confirm != nil {
		return m.confirm.View()
	}

	var genusList strings.Builder
	genusList.WriteString(labelStyle.Render("Select a genus :") + "\n")
	end := min(m.offset+listHeight, len(m.names))
	for i := m.offset; i < end; i++ {
		genusList.WriteString(renderItem(m.names[i], i == m.genusIdx) + "\n")
	}

	var langList strings.Builder
	langList.WriteString(labelStyle.Render("Language") + "\n")
	for i, l := range m.languages {
		langList.WriteString(renderItem(string(l), i == m.langIdx) + "\n")
	}

	left, right := panelStyle, panelStyle
	switch m.focus {
	case focusGenus:
		left = focusedPanel
	case focusLanguage:
		right = focusedPanel
	}
	lists := lipgloss.JoinHorizontal(lipgloss.Top, left.Render(genusList.String()), right.Render(langList.String()))

	exit, run := buttonStyle, buttonStyle
	switch m.focus {
	case focusExit:
		exit = focusedButton
	case focusRun:
		run = focusedButton
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, exit.Render("Exit"), "  ", run.Render("Run"))

	status := m.status
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	} else {
		status = statusStyle.Render(status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lists,
		panelStyle.Render(buttons),
		status,
		m.help.View(keys),
	)
}

func renderItem(name string, selected bool) string {
	if selected {
		return cursorStyle.Render("> " + name)
	}
	return itemStyle.Render(name)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
