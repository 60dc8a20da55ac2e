package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors of the builder's terminal output.
type Theme struct {
	// Brand colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color

	// Text colors
	Text    lipgloss.Color
	TextDim lipgloss.Color
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Accent:    lipgloss.Color("#F59E0B"), // Amber

		Success: lipgloss.Color("#10B981"), // Emerald
		Warning: lipgloss.Color("#F59E0B"), // Amber
		Error:   lipgloss.Color("#EF4444"), // Red
		Muted:   lipgloss.Color("#6B7280"), // Gray

		Text:    lipgloss.Color("#F9FAFB"), // Near white
		TextDim: lipgloss.Color("#9CA3AF"), // Gray
	}
}

// Styles contains the styled components used by the trace, the validation
// report and the diff view. None of them add padding, so rendered lines keep
// their exact text on a plain terminal.
type Styles struct {
	Title    lipgloss.Style
	Rule     lipgloss.Style
	Stage    lipgloss.Style
	Info     lipgloss.Style
	Detail   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
	ToolName lipgloss.Style
	Category lipgloss.Style

	DiffAdded   lipgloss.Style
	DiffRemoved lipgloss.Style
	DiffContext lipgloss.Style
}

// NewStyles creates styled components from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Rule: lipgloss.NewStyle().
			Foreground(t.Primary),

		Stage: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(t.Text),

		Detail: lipgloss.NewStyle().
			Foreground(t.TextDim),

		Success: lipgloss.NewStyle().
			Foreground(t.Success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(t.Muted),

		ToolName: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		Category: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		DiffAdded: lipgloss.NewStyle().
			Foreground(t.Success),

		DiffRemoved: lipgloss.NewStyle().
			Foreground(t.Error),

		DiffContext: lipgloss.NewStyle().
			Foreground(t.TextDim),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() Styles {
	return NewStyles(DefaultTheme())
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title: plain, Rule: plain, Stage: plain, Info: plain, Detail: plain,
		Success: plain, Warning: plain, Error: plain, Muted: plain,
		ToolName: plain, Category: plain,
		DiffAdded: plain, DiffRemoved: plain, DiffContext: plain,
	}
}

// Banner returns the run header.
func Banner(s Styles, provider, model string) string {
	rule := s.Rule.Render(strings.Repeat("=", 60))
	return strings.Join([]string{
		rule,
		s.Title.Render("  OCPM Builder Assistant"),
		s.Detail.Render("  Provider: " + provider + " | Model: " + model),
		rule,
	}, "\n")
}
