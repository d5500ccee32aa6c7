package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/tui/components"
	"github.com/theirongolddev/savecast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// maxMonthRows caps the monthly table to the most recent months.
const maxMonthRows = 18

func (a App) renderMonthlyTab(cw int) string {
	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		return a.renderMonthTable(cw) + "\n" + a.renderSeasonality(cw)
	}
	return components.CardRow([]string{
		a.renderMonthTable(halves[0]),
		a.renderSeasonality(halves[1]),
	})
}

func (a App) renderMonthTable(outerW int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(outerW)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	monthStyle := lipgloss.NewStyle().Foreground(t.Info).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	const monthW = 9
	numW := max((innerW-monthW-3)/3, 8)

	rows := a.months
	if len(rows) > maxMonthRows {
		rows = rows[len(rows)-maxMonthRows:]
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s", monthW, "Month", numW, "Income", numW, "Expenses", numW, "Net")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	for _, m := range rows {
		netStyle := lipgloss.NewStyle().Foreground(t.Signed(m.NetSavings)).Background(t.Surface)
		b.WriteString("\n")
		b.WriteString(monthStyle.Render(fmt.Sprintf("%-*s", monthW, cli.FormatMonth(m.Month))))
		b.WriteString(valueStyle.Render(fmt.Sprintf(" %*s %*s ", numW, cli.FormatAmount(m.IncomeTotal), numW, cli.FormatAmount(m.ExpenseTotal))))
		b.WriteString(netStyle.Render(fmt.Sprintf("%*s", numW, cli.FormatAmount(m.NetSavings))))
	}

	title := fmt.Sprintf("Monthly Totals (%d months)", len(a.months))
	if len(rows) < len(a.months) {
		title = fmt.Sprintf("Monthly Totals (last %d of %d)", len(rows), len(a.months))
	}
	return components.ContentCard(title, b.String(), outerW)
}

func (a App) renderSeasonality(outerW int) string {
	labels := make([]string, 12)
	values := make([]float64, 12)
	for i := 0; i < 12; i++ {
		labels[i] = cli.MonthName(i)
		values[i] = a.seasonality[i]
	}
	return components.ContentCard("Seasonal Adjustment",
		components.DivergingBars(labels, values, components.CardInnerWidth(outerW)),
		outerW)
}
