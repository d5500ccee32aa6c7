package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/pipeline"
	"github.com/theirongolddev/savecast/internal/tui/components"
	"github.com/theirongolddev/savecast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	avg := a.averages
	var b strings.Builder

	// Row 1: Metric cards
	rate := 0.0
	if avg.Income > 0 {
		rate = avg.Savings / avg.Income
	}
	var shortTerm model.PredictionResult
	if len(a.predictions) > 0 {
		shortTerm = a.predictions[0]
	}

	metrics := []components.Metric{
		{Label: "Income", Value: cli.FormatAmount(avg.Income), Delta: "avg/month", Color: t.Gain},
		{Label: "Expenses", Value: cli.FormatAmount(avg.Expenses), Delta: "avg/month", Color: t.Spend},
		{Label: "Savings", Value: cli.FormatAmount(avg.Savings), Delta: cli.FormatPercent(rate) + " of income", Color: t.Signed(avg.Savings)},
		{Label: "Next " + cli.FormatHorizon(shortTerm.Months), Value: cli.FormatAmount(shortTerm.PredictedAmount),
			Delta: fmt.Sprintf("%s confidence", cli.FormatPercent(shortTerm.Confidence)), Color: t.ForConfidence(shortTerm.Confidence)},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: Monthly net savings chart
	series := pipeline.MonthlySeries(a.filtered)
	if len(series) > 0 {
		labels := make([]string, len(series))
		for i, p := range series {
			labels[i] = p.Month[2:]
		}
		chartH := 10
		if a.isCompactLayout() {
			chartH = 7
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Net Savings by Month (%d months)", a.spanMonths),
			components.MonthlyBars(pipeline.SeriesValues(series), labels, components.CardInnerWidth(cw), chartH),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: Top categories per type
	halves := components.LayoutRow(cw, 2)
	expenseCard := components.ContentCard("Top Expenses", a.categoryBars(model.Expense, components.CardInnerWidth(halves[0]), t.Spend), halves[0])
	incomeCard := components.ContentCard("Income Sources", a.categoryBars(model.Income, components.CardInnerWidth(halves[1]), t.Gain), halves[1])
	if a.isCompactLayout() {
		b.WriteString(expenseCard)
		b.WriteString("\n")
		b.WriteString(incomeCard)
	} else {
		b.WriteString(components.CardRow([]string{expenseCard, incomeCard}))
	}

	return b.String()
}

// categoryBars renders up to six categories of txType as horizontal share bars.
func (a App) categoryBars(txType model.TxType, innerW int, color lipgloss.Color) string {
	t := theme.Active

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var rows []model.CategoryStats
	for _, c := range a.categories {
		if c.Type == txType {
			rows = append(rows, c)
		}
	}
	if len(rows) == 0 {
		return pctStyle.Render("none")
	}
	rows = rows[:min(len(rows), 6)]

	maxShare := 0.0
	for _, c := range rows {
		maxShare = max(maxShare, c.SharePercent)
	}
	nameW := max(innerW/3, 10)
	barMaxLen := max(innerW-nameW-8, 1)

	var body strings.Builder
	for i, c := range rows {
		barLen := 0
		if maxShare > 0 {
			barLen = int(c.SharePercent / maxShare * float64(barMaxLen))
		}
		body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(c.Category, nameW))))
		body.WriteString(spaceStyle.Render(" "))
		body.WriteString(barStyle.Render(strings.Repeat("█", barLen)))
		body.WriteString(spaceStyle.Render(" "))
		body.WriteString(pctStyle.Render(fmt.Sprintf("%.0f%%", c.SharePercent)))
		if i < len(rows)-1 {
			body.WriteString("\n")
		}
	}
	return body.String()
}
