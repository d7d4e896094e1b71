package gui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	stateRecorded = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	stateFailed = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stateActive = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	statePending = lipgloss.NewStyle().
			Faint(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Faint(true)

	helpStyle = lipgloss.NewStyle().
			Faint(true)
)
