package cliui

import "github.com/charmbracelet/lipgloss"

// Shared text styles for command output.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	KeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	NameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	WarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// UserStyle and AssistantStyle color chat turns: blue for the user,
	// green for the assistant.
	UserStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	AssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)
