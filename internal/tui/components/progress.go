package components

import (
	"fmt"

	"github.com/theirongolddev/dshield/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

func clampUnit(pct float64) float64 {
	return max(0, min(1, pct))
}

// ProgressBar renders simulation progress with a trailing percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clampUnit(pct)

	bar := progress.New(
		progress.WithSolidFill(string(t.Accent)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(pct) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}

// ScoreGauge renders a Shield Score as a bar colored by risk band.
func ScoreGauge(score float64, width int) string {
	t := theme.Active
	color := t.ForScore(score)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	valueStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(clampUnit(score/100)) + spaceStyle.Render(" ") + valueStyle.Render(fmt.Sprintf("%5.1f", score))
}
