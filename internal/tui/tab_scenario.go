package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/tui/components"
	"github.com/theirongolddev/savecast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func scenarioLabel(kind model.ScenarioKind) string {
	if kind == model.IncomeIncrease {
		return "Raise income"
	}
	return "Cut expenses"
}

func (a App) renderScenarioTab(cw int) string {
	t := theme.Active
	sc := a.scenario
	months := a.scenarioMonths()
	baseline := sc.PredictedAmount - sc.Improvement
	var b strings.Builder

	// Row 1: current scenario
	metrics := []components.Metric{
		{Label: "Scenario", Value: fmt.Sprintf("%s %s", scenarioLabel(sc.Scenario), cli.FormatPercentValue(sc.Percentage)), Delta: "[e]/[i] kind  [+]/[-] %", Color: t.Accent},
		{Label: "Baseline · " + cli.FormatHorizon(months), Value: cli.FormatAmount(baseline), Delta: "no change", Color: t.Signed(baseline)},
		{Label: "With scenario", Value: cli.FormatAmount(sc.PredictedAmount), Delta: cli.FormatDelta(sc.Improvement), Color: t.Signed(sc.PredictedAmount)},
		{Label: "Per month", Value: cli.FormatDelta(sc.MonthlyImprovement), Delta: "extra savings", Color: t.Signed(sc.MonthlyImprovement)},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: sweep table
	innerW := components.CardInnerWidth(cw)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	activeStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Highlight).Bold(true)
	gainStyle := lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface)

	const pctW, amtW = 8, 16
	barW := max(innerW-pctW-2*amtW-3, 5)

	maxImp := 0.0
	for _, r := range a.sweep {
		maxImp = max(maxImp, r.Improvement)
	}

	var table strings.Builder
	table.WriteString(headerStyle.Render(fmt.Sprintf("%*s %*s %*s %s", pctW, "Change", amtW, "Savings", amtW, "Gain", "")))
	table.WriteString("\n")
	table.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	for _, r := range a.sweep {
		barLen := 0
		if maxImp > 0 {
			barLen = int(r.Improvement / maxImp * float64(barW))
		}
		row := fmt.Sprintf("%*s %*s %*s ", pctW, cli.FormatPercentValue(r.Percentage),
			amtW, cli.FormatAmount(r.PredictedAmount), amtW, cli.FormatDelta(r.Improvement))

		table.WriteString("\n")
		if r.Percentage == sc.Percentage {
			table.WriteString(activeStyle.Render(row))
		} else {
			table.WriteString(valueStyle.Render(row))
		}
		table.WriteString(gainStyle.Render(strings.Repeat("█", max(barLen, 0))))
	}

	b.WriteString(components.ContentCard(
		fmt.Sprintf("%s over %s", scenarioLabel(sc.Scenario), cli.FormatHorizon(months)),
		table.String(),
		cw,
	))

	return b.String()
}
