// Package output provides styled terminal rendering for flowwatch: score
// bars, metric tables, intervention alerts, and attention distribution bars.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorFlow is used for high flow scores and positive trends.
	ColorFlow = lipgloss.Color("#66bb6a")

	// ColorAlert is used for interventions and low scores.
	ColorAlert = lipgloss.Color("#ef5350")

	// ColorCaution is used for mid-range scores and warnings.
	ColorCaution = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	// StyleHeader is used for section headers.
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	// StyleFlow is used for healthy scores and improvements.
	StyleFlow = lipgloss.NewStyle().
			Foreground(ColorFlow)

	// StyleAlert is used for intervention output and regressions.
	StyleAlert = lipgloss.NewStyle().
			Foreground(ColorAlert).
			Bold(true)

	// StyleCaution is used for cautionary values.
	StyleCaution = lipgloss.NewStyle().
			Foreground(ColorCaution)

	// StyleMuted is used for de-emphasized text.
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleLabel is used for metric labels.
	StyleLabel = lipgloss.NewStyle().Width(20)
)

// noColor tracks whether color output is disabled.
var noColor bool

func init() {
	// Color defaults off when stdout is not a terminal.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		SetNoColor(true)
	}
}

// SetNoColor disables or enables color output globally. When disabled, all
// package-level styles are reassigned to unstyled renderers.
func SetNoColor(disabled bool) {
	noColor = disabled
	if disabled {
		plain := lipgloss.NewStyle()
		StyleHeader = plain
		StyleFlow = plain
		StyleAlert = plain
		StyleCaution = plain
		StyleMuted = plain
		StyleLabel = plain.Width(20)
	}
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}
