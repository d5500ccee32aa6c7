// Package theme defines color themes for the savecast dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps the dashboard's color roles to concrete colors. Money roles
// (Gain, Loss, Spend) carry meaning; the rest are chrome.
type Theme struct {
	Name string

	Background  lipgloss.Color
	Surface     lipgloss.Color // cards, bars, status line
	Highlight   lipgloss.Color // active tab, selected sweep row
	Border      lipgloss.Color
	Focus       lipgloss.Color // border of modal cards
	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	Gain    lipgloss.Color // income, positive savings
	Loss    lipgloss.Color // negative savings, weak confidence
	Caution lipgloss.Color // middling confidence
	Spend   lipgloss.Color // expenses
	Info    lipgloss.Color // month names, key hints
}

// FlexokiDark is the default theme, built on the warm Flexoki paper palette.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	Highlight:    lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	Focus:        lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Gain:         lipgloss.Color("#879A39"),
	Loss:         lipgloss.Color("#D14D41"),
	Caution:      lipgloss.Color("#D0A215"),
	Spend:        lipgloss.Color("#DA702C"),
	Info:         lipgloss.Color("#6BA3D6"),
}

// CatppuccinMocha uses the Catppuccin Mocha pastels.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	Highlight:    lipgloss.Color("#45475A"),
	Border:       lipgloss.Color("#585B70"),
	Focus:        lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Gain:         lipgloss.Color("#A6E3A1"),
	Loss:         lipgloss.Color("#F38BA8"),
	Caution:      lipgloss.Color("#F9E2AF"),
	Spend:        lipgloss.Color("#FAB387"),
	Info:         lipgloss.Color("#94E2D5"),
}

// TokyoNight is a cool blue and purple theme.
var TokyoNight = Theme{
	Name:         "tokyo-night",
	Background:   lipgloss.Color("#1A1B26"),
	Surface:      lipgloss.Color("#24283B"),
	Highlight:    lipgloss.Color("#343A52"),
	Border:       lipgloss.Color("#565F89"),
	Focus:        lipgloss.Color("#7AA2F7"),
	TextDim:      lipgloss.Color("#565F89"),
	TextMuted:    lipgloss.Color("#A9B1D6"),
	TextPrimary:  lipgloss.Color("#C0CAF5"),
	Accent:       lipgloss.Color("#7AA2F7"),
	AccentBright: lipgloss.Color("#A9C1FF"),
	Gain:         lipgloss.Color("#9ECE6A"),
	Loss:         lipgloss.Color("#F7768E"),
	Caution:      lipgloss.Color("#E0AF68"),
	Spend:        lipgloss.Color("#FF9E64"),
	Info:         lipgloss.Color("#7DCFFF"),
}

// Terminal sticks to the 16 ANSI colors for terminals without true color.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	Highlight:    lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	Focus:        lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Gain:         lipgloss.Color("2"),
	Loss:         lipgloss.Color("1"),
	Caution:      lipgloss.Color("3"),
	Spend:        lipgloss.Color("3"),
	Info:         lipgloss.Color("4"),
}

// Active is the currently selected theme.
var Active = FlexokiDark

// All lists the available themes in display order.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Signed picks the color for a money amount.
func (t Theme) Signed(v float64) lipgloss.Color {
	switch {
	case v > 0:
		return t.Gain
	case v < 0:
		return t.Loss
	default:
		return t.TextMuted
	}
}

// ForConfidence maps a 0-1 confidence score to a color.
func (t Theme) ForConfidence(score float64) lipgloss.Color {
	switch {
	case score >= 0.7:
		return t.Gain
	case score >= 0.4:
		return t.Caution
	case score >= 0.2:
		return t.Spend
	default:
		return t.Loss
	}
}
