package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmedMsg carries the answer of a ConfirmModel.
type ConfirmedMsg struct {
	Accepted bool
}

// ConfirmModel asks whether a large map should be rendered anyway.
type ConfirmModel struct {
	count    int
	onCancel bool
}

// NewConfirmModel prompts for count markers, with Continue focused.
func NewConfirmModel(count int) ConfirmModel {
	return ConfirmModel{count: count}
}

// Message is the prompt text.
func (m ConfirmModel) Message() string {
	return fmt.Sprintf("Please note that there are %d trees, the browser may have difficulty displaying them.", m.count)
}

func (m ConfirmModel) Init() tea.Cmd { return nil }

// Update resolves the prompt on enter, y, or any decline key.
func (m ConfirmModel) Update(msg tea.Msg) (ConfirmModel, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, keys.Accept):
		return m, answer(true)
	case key.Matches(k, keys.Decline):
		return m, answer(false)
	case key.Matches(k, keys.Left):
		m.onCancel = false
	case key.Matches(k, keys.Right):
		m.onCancel = true
	case key.Matches(k, keys.Enter):
		return m, answer(!m.onCancel)
	}
	return m, nil
}

func answer(accepted bool) tea.Cmd {
	return func() tea.Msg { return ConfirmedMsg{Accepted: accepted} }
}

func (m ConfirmModel) View() string {
	cont, cancel := focusedButton, buttonStyle
	if m.onCancel {
		cont, cancel = buttonStyle, focusedButton
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, cont.Render("Continue"), "  ", cancel.Render("Cancel"))
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		warningStyle.Render("WARNING"),
		"",
		m.Message(),
		"",
		buttons,
	))
}
