// Package tui renders slicer's human-facing terminal output.
//
// Colors are AdaptiveColor values so they read on light and dark terminals.
// Every status is shown as icon + color + text, so output stays legible when
// color is disabled.
//
// Call CheckNoColor() at the start of commands to respect NO_COLOR.
// Colors are also disabled when TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/slicer/internal/domain"
)

//nolint:gochecknoglobals // Intentional package-level constants for styling API
var (
	// ColorPrimary is blue, used for paths and informational lines.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for passed slices.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failed slices and errors.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// CheckNoColor switches lipgloss to plain ASCII when color is unwanted.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false if NO_COLOR is set (any value, including
// empty) or TERM=dumb. See https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// SliceStatusIcon returns the icon shown next to a slice outcome.
func SliceStatusIcon(status domain.SliceStatus) string {
	switch status {
	case domain.SliceStatusPassed:
		return "✓"
	case domain.SliceStatusFailed:
		return "✗"
	default:
		return "○"
	}
}

// SliceStatusStyle returns the style for a slice outcome.
func SliceStatusStyle(styles *OutputStyles, status domain.SliceStatus) lipgloss.Style {
	switch status {
	case domain.SliceStatusPassed:
		return styles.Success
	case domain.SliceStatusFailed:
		return styles.Error
	default:
		return styles.Dim
	}
}
