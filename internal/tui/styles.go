package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))

	timerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	timerEndingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 2)

	exerciseStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(8)

	exceededStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	metStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	missedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("220")).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	doneMarkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	currentMarkStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
