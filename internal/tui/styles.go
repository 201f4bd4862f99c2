package tui

import "github.com/charmbracelet/lipgloss"

const toastWidth = 48

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	frequencyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	collocateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141"))

	sentenceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	inputBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	toastBaseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(toastWidth)

	toastDefaultStyle     = toastBaseStyle.BorderForeground(lipgloss.Color("63"))
	toastDestructiveStyle = toastBaseStyle.BorderForeground(lipgloss.Color("196"))
	toastWarningStyle     = toastBaseStyle.BorderForeground(lipgloss.Color("214"))
	toastSuccessStyle     = toastBaseStyle.BorderForeground(lipgloss.Color("42"))
)
