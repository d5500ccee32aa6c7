package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/savecast/internal/config"
	"github.com/theirongolddev/savecast/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	LedgerDir string
	Horizons  string
	Percent   string
	Theme     string
}

var horizonPresets = []struct {
	label               string
	short, medium, long int
}{
	{"1 / 3 / 10 years", 12, 36, 120},
	{"6 months / 2 / 5 years", 6, 24, 60},
	{"2 / 5 / 20 years", 24, 60, 240},
}

// NewSetupForm builds the first-run wizard. vals is prefilled from cfg and
// receives the answers.
func NewSetupForm(cfg config.Config, txCount int, ledgerDir string, vals *SetupValues) *huh.Form {
	vals.LedgerDir = ledgerDir
	vals.Percent = strconv.FormatFloat(cfg.Scenario.DefaultPercent, 'f', -1, 64)
	vals.Theme = cfg.Appearance.Theme
	vals.Horizons = horizonPresets[0].label
	for _, p := range horizonPresets {
		if p.short == cfg.General.ShortMonths && p.medium == cfg.General.MediumMonths && p.long == cfg.General.LongMonths {
			vals.Horizons = p.label
		}
	}

	welcome := "No ledger files found yet."
	if txCount > 0 {
		welcome = fmt.Sprintf("Found %d transactions in %s.", txCount, ledgerDir)
	}

	horizonOpts := make([]huh.Option[string], 0, len(horizonPresets))
	for _, p := range horizonPresets {
		horizonOpts = append(horizonOpts, huh.NewOption(p.label, p.label))
	}
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(th.Name, th.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to savecast").
				Description(welcome+"\nA few settings and you're done."),
			huh.NewInput().
				Title("Ledger directory").
				Description("Folder of .jsonl or .csv files, one subfolder per account.").
				Value(&vals.LedgerDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("ledger directory cannot be empty")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Forecast horizons").
				Description("Short / medium / long projection lengths.").
				Options(horizonOpts...).
				Value(&vals.Horizons),
			huh.NewInput().
				Title("Default scenario adjustment (%)").
				Value(&vals.Percent).
				Validate(validatePercent),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithShowHelp(false)
}

func validatePercent(s string) error {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if p < 0 || p > 100 {
		return fmt.Errorf("must be between 0 and 100")
	}
	return nil
}

// ApplySetup copies form answers into cfg.
func ApplySetup(cfg *config.Config, vals SetupValues) {
	cfg.General.LedgerDir = strings.TrimSpace(vals.LedgerDir)
	for _, p := range horizonPresets {
		if p.label == vals.Horizons {
			cfg.General.ShortMonths = p.short
			cfg.General.MediumMonths = p.medium
			cfg.General.LongMonths = p.long
		}
	}
	if p, err := strconv.ParseFloat(strings.TrimSpace(vals.Percent), 64); err == nil {
		cfg.Scenario.DefaultPercent = p
	}
	if vals.Theme != "" {
		cfg.Appearance.Theme = vals.Theme
	}
}

// saveSetupConfig persists the wizard answers and applies them to the
// running dashboard.
func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	ApplySetup(&cfg, a.setupVals)
	theme.SetActive(cfg.Appearance.Theme)
	a.cfg = cfg
	return config.Save(cfg)
}
