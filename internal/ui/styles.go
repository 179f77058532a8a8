package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorPrimary = lipgloss.Color("#A78BFA") // Soft Purple (Lavender 400)
	ColorSuccess = lipgloss.Color("#059669") // Emerald 600 (muted green)
	ColorWarning = lipgloss.Color("#D97706") // Amber 600 (muted amber)
	ColorError   = lipgloss.Color("#DC2626") // Red 600 (muted red)
	ColorMuted   = lipgloss.Color("#9CA3AF") // Neutral Gray (Gray 400)
	ColorDim     = lipgloss.Color("#6B7280") // Gray 500
)

// Styles for the line-oriented console.
var (
	assistantStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	systemStyle    = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	promptStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	errorStyle     = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	traceStyle     = lipgloss.NewStyle().Foreground(ColorDim)
)
