package ui

import "github.com/charmbracelet/lipgloss"

var (
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).PaddingLeft(2)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	buttonStyle   = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	focusedButton = buttonStyle.BorderForeground(lipgloss.Color("42")).Foreground(lipgloss.Color("42"))
	panelStyle    = lipgloss.NewStyle().Padding(1, 2)
	focusedPanel  = panelStyle.Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("42"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	warningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
