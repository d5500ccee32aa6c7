// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatAmount formats a money value with comma separators. Cents are shown
// only when present and the magnitude is below 1,000.
// e.g., 1860000 -> "1,860,000", 12.5 -> "12.50", -300 -> "-300"
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	if v < 0 {
		return "-" + FormatAmount(-v)
	}
	cents := math.Round(v * 100)
	whole := int64(cents / 100)
	frac := int64(cents) % 100
	if frac == 0 || whole >= 1000 {
		return FormatNumber(int64(math.Round(v)))
	}
	return fmt.Sprintf("%s.%02d", FormatNumber(whole), frac)
}

// FormatCompact formats a money value with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1860000 -> "1.9M"
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatPercentValue formats an already-scaled percentage, e.g. 12.5 -> "12.5%".
func FormatPercentValue(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%.0f%%", p)
	}
	return fmt.Sprintf("%.1f%%", p)
}

// FormatDelta formats an amount change with an explicit sign.
func FormatDelta(delta float64) string {
	if delta >= 0 {
		return "+" + FormatAmount(delta)
	}
	return "-" + FormatAmount(-delta)
}

// FormatMonth turns a "YYYY-MM" key into "Jan 2024". Unparseable keys are
// returned unchanged.
func FormatMonth(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}

// MonthName returns a 3-letter month abbreviation for a zero-based index.
func MonthName(i int) string {
	if i < 0 || i > 11 {
		return "???"
	}
	return time.Month(i + 1).String()[:3]
}

// FormatHorizon describes a number of months, adding years when whole.
// e.g., 12 -> "12 mo (1y)", 18 -> "18 mo"
func FormatHorizon(months int) string {
	if months >= 12 && months%12 == 0 {
		return fmt.Sprintf("%d mo (%dy)", months, months/12)
	}
	return fmt.Sprintf("%d mo", months)
}
