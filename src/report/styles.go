// Package report renders notifier results and resolved artifacts for the
// terminal.
package report

import (
	"github.com/charmbracelet/lipgloss"

	"hygieia-reporter/src/status"
)

// StyleConfig holds the colors used by the renderers.
type StyleConfig struct {
	Title         lipgloss.Color
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	BorderColor   lipgloss.Color
	Good          lipgloss.Color
	Warn          lipgloss.Color
	Bad           lipgloss.Color
	Neutral       lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		Title:         lipgloss.Color("#8AB4F8"),
		TextPrimary:   lipgloss.Color("#E8EAED"),
		TextSecondary: lipgloss.Color("#9AA0A6"),
		BorderColor:   lipgloss.Color("#5F6368"),
		Good:          lipgloss.Color("#34A853"),
		Warn:          lipgloss.Color("#FBBC04"),
		Bad:           lipgloss.Color("#EA4335"),
		Neutral:       lipgloss.Color("#24C1E0"),
	}
}

// TitleStyle returns the heading style.
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.Title).
		Bold(true)
}

// MutedStyle returns the style for secondary text.
func (s *StyleConfig) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.TextSecondary)
}

// BoxStyle returns the bordered container around a table.
func (s *StyleConfig) BoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextPrimary).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.BorderColor)
}

// LabelStyle colors a status label.
func (s *StyleConfig) LabelStyle(l status.Label) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch l {
	case status.Success, status.BackToNormal:
		return style.Foreground(s.Good)
	case status.Unstable:
		return style.Foreground(s.Warn)
	case status.Failure, status.StillFailing:
		return style.Foreground(s.Bad)
	case status.Starting:
		return style.Foreground(s.Neutral)
	default:
		return style.Foreground(s.TextSecondary)
	}
}

// CodeStyle colors an HTTP status code.
func (s *StyleConfig) CodeStyle(created bool) lipgloss.Style {
	if created {
		return lipgloss.NewStyle().Foreground(s.Good)
	}
	return lipgloss.NewStyle().Foreground(s.Bad)
}
