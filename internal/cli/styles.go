// Package cli provides styled terminal output for the hub commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	PrimaryColor = lipgloss.Color("#5FAFD7") // Sky
	SuccessColor = lipgloss.Color("#4ECDC4") // Teal
	WarningColor = lipgloss.Color("#FFE66D") // Yellow
	ErrorColor   = lipgloss.Color("#FF6B6B") // Red
	InfoColor    = lipgloss.Color("#95E1D3") // Light teal
	SubtleColor  = lipgloss.Color("#666666") // Gray
	MoneyColor   = lipgloss.Color("#A8E6A3") // Mint
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)

	// OccurrenceStyle dims reminder rows that only exist as rule occurrences.
	OccurrenceStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// TotalStyle highlights month and payer totals.
	TotalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(MoneyColor)

	// SummaryBoxStyle frames the month summary.
	SummaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(1, 2)

	// PromptStyle is used for confirmation prompts.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon  = "✓"
	ErrorIcon    = "✗"
	WarningIcon  = "⚠️"
	InfoIcon     = "ℹ️"
	HubIcon      = "🏠"
	CalendarIcon = "📅"
	MoneyIcon    = "💰"
	RepeatIcon   = "🔁"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle renders title behind icon, or the hub icon when icon is empty.
func FormatTitle(icon, title string) string {
	if icon == "" {
		icon = HubIcon
	}
	return TitleStyle.Render(icon + " " + title)
}

// FormatPrompt formats a question awaiting input.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderSummary frames content under a bold heading.
func RenderSummary(heading, content string) string {
	return SummaryBoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.UnsetMargins().Render(heading),
		content,
	))
}
