package tui

import "github.com/charmbracelet/lipgloss"

var (
	Primary   = lipgloss.Color("#4ECDC4")
	Success   = lipgloss.Color("#95E1A3")
	Failure   = lipgloss.Color("#FF6B6B")
	Warning   = lipgloss.Color("#FFE66D")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	ListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	StatusStyle = lipgloss.NewStyle().Foreground(TextMuted)

	FormStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	LabelStyle        = lipgloss.NewStyle().Width(30).Foreground(TextMuted)
	LabelFocusedStyle = lipgloss.NewStyle().Width(30).Foreground(Primary).Bold(true)

	ToastSuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ToastErrorStyle   = lipgloss.NewStyle().Foreground(Failure).Bold(true)
	ConfirmStyle      = lipgloss.NewStyle().Foreground(Warning).Bold(true)
)
