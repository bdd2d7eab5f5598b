package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#4ECDC4")
	Completed = lipgloss.Color("#95E1A3")
	Danger    = lipgloss.Color("#FF6B6B")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	ListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	TodoItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TodoItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TodoDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	FilterActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary)

	FilterStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	MessageStyle = lipgloss.NewStyle().
			Foreground(Danger)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)
