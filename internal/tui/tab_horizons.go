package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/tui/components"
	"github.com/theirongolddev/savecast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderHorizonsTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	// Row 1: one metric card per horizon
	metrics := make([]components.Metric, 0, len(a.predictions))
	for _, p := range a.predictions {
		metrics = append(metrics, components.Metric{
			Label: strings.ToUpper(string(p.Period[:1])) + string(p.Period[1:]) + " · " + cli.FormatHorizon(p.Months),
			Value: cli.FormatAmount(p.PredictedAmount),
			Delta: cli.FormatAmount(p.MonthlyAmount()) + "/mo",
			Color: t.Signed(p.PredictedAmount),
		})
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: confidence bars
	innerW := components.CardInnerWidth(cw)
	labelW := 8
	barW := max(innerW-labelW-6, 10)

	var conf strings.Builder
	for i, p := range a.predictions {
		conf.WriteString(components.ConfidenceBar(string(p.Period), p.Confidence, labelW, barW))
		if i < len(a.predictions)-1 {
			conf.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard("Confidence", conf.String(), cw))
	b.WriteString("\n")

	// Row 3: factors considered by each model
	cols := components.LayoutRow(cw, max(len(a.predictions), 1))
	factorStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	bulletStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	cards := make([]string, 0, len(a.predictions))
	for i, p := range a.predictions {
		var body strings.Builder
		for j, f := range p.Factors {
			body.WriteString(bulletStyle.Render("• "))
			body.WriteString(factorStyle.Render(truncStr(f, components.CardInnerWidth(cols[i])-2)))
			if j < len(p.Factors)-1 {
				body.WriteString("\n")
			}
		}
		cards = append(cards, components.ContentCard(fmt.Sprintf("%s factors", p.Period), body.String(), cols[i]))
	}
	if a.isCompactLayout() {
		b.WriteString(strings.Join(cards, "\n"))
	} else {
		b.WriteString(components.CardRow(cards))
	}

	return b.String()
}
