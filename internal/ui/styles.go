package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorAccent    = lipgloss.Color("#F59E0B") // Amber
	colorError     = lipgloss.Color("#EF4444") // Red
	colorText      = lipgloss.Color("#F8FAFC")
	colorMuted     = lipgloss.Color("#94A3B8")
	colorDimmed    = lipgloss.Color("#374151")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	npcLabelStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	turnTextStyle = lipgloss.NewStyle().
			Foreground(colorText)

	chatPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorDimmed)

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	disabledInputStyle = inputStyle.
				BorderForeground(colorDimmed)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	recordingStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)
)
