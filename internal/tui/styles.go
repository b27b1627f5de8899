package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for terminal output.
var (
	ColorPrimary = lipgloss.Color("#2563eb") // Blue
	ColorAccent  = lipgloss.Color("#7c3aed") // Violet
	ColorMuted   = lipgloss.Color("#94a3b8") // Slate
	ColorWarning = lipgloss.Color("#f59e0b") // Amber
	ColorError   = lipgloss.Color("#ef4444") // Red
	ColorSuccess = lipgloss.Color("#22c55e") // Green
)

// Text styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// SelectedStyle and UnselectedStyle mark list rows in the setup wizard.
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	// DomainStyle highlights a classified domain.
	DomainStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	// IDStyle renders EPIC-NN, US-NN-NN and FR-NNN identifiers.
	IDStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary)

	ModelStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	CostStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)
)

// BoxStyle frames summaries.
var BoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorMuted).
	Padding(0, 1)
