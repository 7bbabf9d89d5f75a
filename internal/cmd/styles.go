package cmd

import "github.com/charmbracelet/lipgloss"

// Terminal styles for command output.
var (
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#F87171") // Red
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	greenColor   = lipgloss.Color("#10B981") // Green

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	warnStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	okStyle = lipgloss.NewStyle().
		Foreground(greenColor)

	responseBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)
)

// severityStyle picks a style for a diagnosis severity badge.
func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case "high", "critical":
		return errorStyle
	case "medium":
		return warnStyle
	default:
		return okStyle
	}
}
