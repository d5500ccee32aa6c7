package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{12.5, "12.50"},
		{350000, "350,000"},
		{1860000.4, "1,860,000"},
		{-155000, "-155,000"},
		{999.999, "1,000"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{999, "999"},
		{1234, "1.2K"},
		{1860000, "1.9M"},
		{-2500000000, "-2.5B"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.in); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatDelta(-19500); got != "-19,500" {
		t.Errorf("FormatDelta = %q", got)
	}
	if got := FormatDelta(19500); got != "+19,500" {
		t.Errorf("FormatDelta = %q", got)
	}
	if got := FormatMonth("2024-01"); got != "Jan 2024" {
		t.Errorf("FormatMonth = %q", got)
	}
	if got := FormatMonth("bogus"); got != "bogus" {
		t.Errorf("FormatMonth(bogus) = %q", got)
	}
	if got := MonthName(11); got != "Dec" {
		t.Errorf("MonthName(11) = %q", got)
	}
	if got := FormatHorizon(120); got != "120 mo (10y)" {
		t.Errorf("FormatHorizon(120) = %q", got)
	}
	if got := FormatPercentValue(12.5); got != "12.5%" {
		t.Errorf("FormatPercentValue = %q", got)
	}
}

func TestRenderTableAlignsWideRunes(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Total"},
		Rows: [][]string{
			{"給与", "350,000"},
			{"Food", "45,000"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := lipgloss.Width(lines[0])
	for i, l := range lines {
		if w := lipgloss.Width(l); w != want {
			t.Errorf("line %d width = %d, want %d: %q", i, w, want, l)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("empty sparkline = %q", got)
	}
	got := []rune(RenderSparkline([]float64{-100, 0, 100}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Errorf("sparkline = %q", string(got))
	}
}
