package tui

import (
	"github.com/charmbracelet/lipgloss"

	"dqs-sentinel/src/contracts"
	"dqs-sentinel/src/stream"
)

// StyleConfig holds all customizable style colors for the dashboard.
type StyleConfig struct {
	// Primary colors
	PrimaryBlue    lipgloss.Color
	AccentBlue     lipgloss.Color
	DarkBackground lipgloss.Color
	TextPrimary    lipgloss.Color
	TextSecondary  lipgloss.Color
	BorderColor    lipgloss.Color
	SelectedColor  lipgloss.Color

	// Accent colors per action bucket
	SafeColor     lipgloss.Color
	ReviewColor   lipgloss.Color
	EscalateColor lipgloss.Color
	RejectedColor lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:    lipgloss.Color("#8AB4F8"),
		AccentBlue:     lipgloss.Color("#4285F4"),
		DarkBackground: lipgloss.Color("#1E1E1E"),
		TextPrimary:    lipgloss.Color("#E8EAED"),
		TextSecondary:  lipgloss.Color("#9AA0A6"),
		BorderColor:    lipgloss.Color("#5F6368"),
		SelectedColor:  lipgloss.Color("#303134"),
		SafeColor:      lipgloss.Color("#34A853"), // Green
		ReviewColor:    lipgloss.Color("#FBBC04"), // Yellow
		EscalateColor:  lipgloss.Color("#EA4335"), // Red
		RejectedColor:  lipgloss.Color("#9AA0A6"), // Gray
	}
}

// ActionColor returns the accent color for an action bucket
func (s *StyleConfig) ActionColor(a contracts.Action) lipgloss.Color {
	switch a {
	case contracts.ActionSafe:
		return s.SafeColor
	case contracts.ActionReview:
		return s.ReviewColor
	case contracts.ActionEscalate:
		return s.EscalateColor
	case contracts.ActionNone:
		return s.RejectedColor
	}
	return s.TextSecondary
}

// StateColor returns the accent color for a connection state
func (s *StyleConfig) StateColor(state stream.ConnState) lipgloss.Color {
	switch state {
	case stream.StateConnected:
		return s.SafeColor
	case stream.StateConnecting:
		return s.ReviewColor
	}
	return s.EscalateColor
}

// TitleStyle returns a title lipgloss style using this config
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true).
		Padding(0, 1)
}

// HelpStyle returns a help text lipgloss style using this config
func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 2)
}
