package components

import (
	"strings"

	"github.com/theirongolddev/savecast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. info is shown on the
// right, e.g. data age or a refresh indicator.
func RenderStatusBar(width int, info string, refreshing, autoRefresh bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	accent := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	left := style.Render(" [?]help  [r]efresh  [q]uit")

	right := ""
	switch {
	case refreshing:
		right = accent.Render("refreshing… ")
	case autoRefresh:
		right = accent.Render("auto ") + style.Render(info+" ")
	case info != "":
		right = style.Render(info + " ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return left + style.Render(strings.Repeat(" ", padding)) + right
}
