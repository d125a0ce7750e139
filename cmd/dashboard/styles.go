package main

import "github.com/charmbracelet/lipgloss"

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	// LabelStyle aligns the metric labels of the results view.
	LabelStyle = lipgloss.NewStyle().Bold(true).Width(16)

	// FocusedStyle marks the parameter being edited.
	FocusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// FormatReturn colors a formatted return by the sign of rate.
func FormatReturn(formatted string, rate float64) string {
	switch {
	case rate > 0:
		return gainStyle.Render(formatted + " ▲")
	case rate < 0:
		return lossStyle.Render(formatted + " ▼")
	default:
		return formatted
	}
}

