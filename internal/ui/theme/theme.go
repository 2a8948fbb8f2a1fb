// Package theme holds the colours and styles shared by all screens.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette: paper tones with ink accents.
var (
	Primary   = lipgloss.Color("#2563EB") // Ink blue
	Secondary = lipgloss.Color("#0D9488") // Teal
	Accent    = lipgloss.Color("#D97706") // Amber
	Success   = lipgloss.Color("#16A34A") // Green
	Error     = lipgloss.Color("#DC2626") // Red
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Instructions = lipgloss.NewStyle().
			Foreground(Text).
			Italic(true)

	Option = lipgloss.NewStyle().
		Foreground(TextDim)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Answers
var (
	Answer = lipgloss.NewStyle().
		Foreground(Success)

	Unresolved = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Tabs
var (
	TabActive = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Bold(true).
			Padding(0, 1)

	TabInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Padding(0, 1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Notice = lipgloss.NewStyle().
		Foreground(Accent)
)
