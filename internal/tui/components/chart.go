package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline scaled between the series minimum
// and maximum, so negative months still show shape.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := len(blocks) - 1
		if span > 0 {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		idx = max(0, min(idx, len(blocks)-1))
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

// MonthlyBars renders one two-cell column per value around a zero axis:
// gains grow up in green, losses grow down in red. When the values do not
// fit in width, the most recent ones are kept. height is the number of bar
// rows, split between the two sides in proportion to their range.
func MonthlyBars(values []float64, labels []string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, theme.Active.Gain)
	}
	t := theme.Active

	hi, lo := 0.0, 0.0
	for _, v := range values {
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	hiLabel, loLabel := cli.FormatCompact(hi), cli.FormatCompact(lo)
	yLabelW := max(len(hiLabel), len(loLabel)) + 1

	const barW, colW = 2, 3
	if maxCols := max((width-yLabelW)/colW, 1); len(values) > maxCols {
		values = values[len(values)-maxCols:]
		if len(labels) > maxCols {
			labels = labels[len(labels)-maxCols:]
		}
	}
	axisLen := len(values)*colW - 1

	span := hi - lo
	if span == 0 {
		span = 1
	}
	up := int(math.Round(float64(height) * hi / span))
	if hi > 0 {
		up = max(up, 1)
	}
	if lo < 0 {
		up = min(up, height-1)
	}
	down := height - up

	bg := lipgloss.NewStyle().Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	gainStyle := lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface)
	lossStyle := lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface)
	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	// level is the bar length of v in rows on its own side of the axis.
	level := func(v float64, rows int, limit float64) float64 {
		if limit == 0 {
			return 0
		}
		return math.Abs(v) / math.Abs(limit) * float64(rows)
	}
	yLabel := func(row, last int, text string) string {
		if row != last {
			text = ""
		}
		return axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, text))
	}

	var b strings.Builder
	for row := up; row >= 1; row-- {
		b.WriteString(yLabel(row, up, hiLabel))
		for i, v := range values {
			if i > 0 {
				b.WriteString(bg.Render(" "))
			}
			l := level(math.Max(v, 0), up, hi)
			switch {
			case l >= float64(row):
				b.WriteString(gainStyle.Render(strings.Repeat("█", barW)))
			case l > float64(row-1):
				idx := max(0, min(int((l-float64(row-1))*8)-1, 7))
				b.WriteString(gainStyle.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(bg.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s┼%s", yLabelW, "0", strings.Repeat("─", axisLen))))

	for row := 1; row <= down; row++ {
		b.WriteString("\n")
		b.WriteString(yLabel(row, down, loLabel))
		for i, v := range values {
			if i > 0 {
				b.WriteString(bg.Render(" "))
			}
			if level(math.Min(v, 0), down, lo) > float64(row)-0.5 {
				b.WriteString(lossStyle.Render(strings.Repeat("█", barW)))
			} else {
				b.WriteString(bg.Render(strings.Repeat(" ", barW)))
			}
		}
	}

	if len(labels) == len(values) {
		b.WriteString("\n")
		b.WriteString(bg.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(columnLabels(labels, colW, axisLen)))
	}
	return b.String()
}

// columnLabels places labels under their columns from right to left,
// skipping any that would touch the one after it. Labels never extend past
// axisLen.
func columnLabels(labels []string, colW, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	limit := axisLen
	for i := len(labels) - 1; i >= 0; i-- {
		l := labels[i]
		pos := min(i*colW, axisLen-len(l))
		if pos < 0 || pos+len(l) > limit {
			continue
		}
		copy(buf[pos:], l)
		limit = pos - 1
	}
	return strings.TrimRight(string(buf), " ")
}

// DivergingBars renders one row per label with a bar growing left for
// negative values and right for positive ones, around a shared axis.
func DivergingBars(labels []string, values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	for _, l := range labels {
		labelW = max(labelW, lipgloss.Width(l))
	}
	valueW := 7
	half := (width - labelW - valueW - 3) / 2
	if half < 3 {
		half = 3
	}

	limit := 0.0
	for _, v := range values {
		limit = math.Max(limit, math.Abs(v))
	}
	if limit == 0 {
		limit = 1
	}

	bg := lipgloss.NewStyle().Background(t.Surface)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	posStyle := lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface)
	negStyle := lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface)

	var b strings.Builder
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		n := int(math.Round(math.Abs(v) / limit * float64(half)))

		left := bg.Render(strings.Repeat(" ", half))
		right := bg.Render(strings.Repeat(" ", half))
		if v < 0 {
			left = bg.Render(strings.Repeat(" ", half-n)) + negStyle.Render(strings.Repeat("█", n))
		} else if v > 0 {
			right = posStyle.Render(strings.Repeat("█", n)) + bg.Render(strings.Repeat(" ", half-n))
		}

		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s ", labelW, label)))
		b.WriteString(left)
		b.WriteString(axisStyle.Render("│"))
		b.WriteString(right)
		b.WriteString(labelStyle.Render(fmt.Sprintf(" %+*.2f", valueW-1, v)))
		if i < len(values)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
