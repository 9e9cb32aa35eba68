// Package ui provides terminal output components using Charm libraries.
//
// This package contains the styling, message printing, spinner and
// line-based prompt used by droidloop's non-fullscreen output.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Android green marks success and the current selection.
var (
	Green   = lipgloss.Color("#3DDC84")
	Teal    = lipgloss.Color("#14B8A6")
	Red     = lipgloss.Color("#EF4444")
	Amber   = lipgloss.Color("#F59E0B")
	Blue    = lipgloss.Color("#4285F4")
	Light   = lipgloss.Color("#E5E7EB")
	DimGray = lipgloss.Color("#9CA3AF")
)

// Message styles, one per Print* function.
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Red).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(Amber)
	InfoStyle    = lipgloss.NewStyle().Foreground(Light)
	DimStyle     = lipgloss.NewStyle().Foreground(DimGray)
)

// Prompt styles used by LinePrompter.
var (
	// TitleStyle highlights the option under the default marker.
	TitleStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)

	// AccentStyle renders option numbers.
	AccentStyle = lipgloss.NewStyle().Foreground(Blue).Bold(true)
)

// RunningStyle colors the spinner frame.
var RunningStyle = lipgloss.NewStyle().Foreground(Teal)

// Box styles for PrintBox.
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Padding(0, 1)

	BoxTitleStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)
)

// Table styles.
var (
	TableHeaderStyle = lipgloss.NewStyle().Foreground(DimGray).Bold(true)
	TableCellStyle   = lipgloss.NewStyle()
)
