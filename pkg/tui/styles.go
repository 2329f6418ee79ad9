// SPDX-License-Identifier: GPL-3.0-only
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the live build dashboard.
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorRunning = lipgloss.Color("#F59E0B") // Amber
	ColorDone    = lipgloss.Color("#22C55E") // Green
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorBorder  = lipgloss.Color("#374151") // Dark gray
	ColorBg      = lipgloss.Color("#1F2937") // Dark background
	ColorText    = lipgloss.Color("#F9FAFB") // Light text
)

// Styles holds every lipgloss.Style the dashboard renders with.
type Styles struct {
	Header    lipgloss.Style
	Footer    lipgloss.Style
	HelpBar   lipgloss.Style
	StatusRow lipgloss.Style
	Running   lipgloss.Style
	ETAKnown  lipgloss.Style
	ETAUnsure lipgloss.Style
}

// DefaultStyles builds the dashboard's style set.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(ColorBg).
			Foreground(ColorText).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(ColorBg).
			Foreground(ColorMuted).
			Padding(0, 1),

		HelpBar: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1),

		StatusRow: lipgloss.NewStyle().
			Foreground(ColorText),

		Running: lipgloss.NewStyle().
			Foreground(ColorRunning).
			Bold(true),

		ETAKnown: lipgloss.NewStyle().
			Foreground(ColorDone),

		ETAUnsure: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),
	}
}
