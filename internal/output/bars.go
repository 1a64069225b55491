package output

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/flowwatch/internal/attention"
	"github.com/blackwell-systems/flowwatch/internal/intervene"
)

// ScoreBar renders a visual bar for a 0-100 flow score.
// Example: "████████░░ 80/100"
func ScoreBar(score float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((score / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case score >= 70:
		style = func(s string) string { return StyleFlow.Render(s) }
	case score >= 40:
		style = func(s string) string { return StyleCaution.Render(s) }
	default:
		style = func(s string) string { return StyleAlert.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.0f/100", score)))
}

// DistributionBars renders one bar per attention class, labeled and scaled
// to the given width.
func DistributionBars(d attention.Distribution, width int) string {
	if width <= 0 {
		width = 20
	}

	var sb strings.Builder
	for i, p := range d {
		label := attention.Class(i).String()
		filled := int(p * float64(width))
		if filled > width {
			filled = width
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			StyleLabel.Render(label),
			StyleMuted.Render(bar),
			fmt.Sprintf("%4.1f%%", p*100)))
	}
	return sb.String()
}

// InterventionLine renders one triggered intervention as a styled alert line.
func InterventionLine(ev intervene.Event) string {
	return fmt.Sprintf("%s %s %s",
		StyleAlert.Render("▲ "+string(ev.Kind)),
		ev.Reason,
		StyleMuted.Render(ev.TriggeredAt.Format("15:04:05")))
}
