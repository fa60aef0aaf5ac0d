package components

import (
	"strings"

	"github.com/theirongolddev/dshield/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar with key hints on the left
// and run details on the right.
func RenderStatusBar(width int, hints, detail string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " " + hints
	right := detail + " "
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
