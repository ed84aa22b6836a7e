package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Run     key.Binding
	Enter   key.Binding
	Quit    key.Binding
	Left    key.Binding
	Right   key.Binding
	Accept  key.Binding
	Decline key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous")),
	Run:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "exit")),
	Left:    key.NewBinding(key.WithKeys("left", "h", "shift+tab")),
	Right:   key.NewBinding(key.WithKeys("right", "l", "tab")),
	Accept:  key.NewBinding(key.WithKeys("y")),
	Decline: key.NewBinding(key.WithKeys("n", "esc", "q", "ctrl+c")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Run, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
