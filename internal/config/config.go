// Package config loads and saves savecast settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/savecast/internal/forecast"
	"github.com/theirongolddev/savecast/internal/model"
)

// Environment variables that override the config file.
const (
	EnvLedgerDir     = "SAVECAST_LEDGER_DIR"
	EnvInflationRate = "SAVECAST_INFLATION_RATE"
	EnvLogLevel      = "SAVECAST_LOG_LEVEL"
)

// MaxHorizonMonths bounds every projection length: config horizons, CLI
// flags and daemon query parameters.
const MaxHorizonMonths = 600

// Themes lists the theme names accepted in [appearance].
var Themes = []string{"flexoki-dark", "catppuccin-mocha", "tokyo-night", "terminal"}

// Config holds all savecast configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Scenario   ScenarioConfig   `toml:"scenario"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds ledger location and horizon preferences.
type GeneralConfig struct {
	LedgerDir            string `toml:"ledger_dir,omitempty"`
	ShortMonths          int    `toml:"short_months"`
	MediumMonths         int    `toml:"medium_months"`
	LongMonths           int    `toml:"long_months"`
	IncludeRecurringOnly bool   `toml:"include_recurring_only"`
}

// ForecastConfig overrides economic assumptions. Nil fields keep the defaults.
type ForecastConfig struct {
	InflationRate     *float64 `toml:"inflation_rate,omitempty"`
	NominalGrowthRate *float64 `toml:"nominal_growth_rate,omitempty"`
	SeasonalDamping   *float64 `toml:"seasonal_damping,omitempty"`
}

// ScenarioConfig holds defaults for what-if scenarios.
type ScenarioConfig struct {
	DefaultKind    string  `toml:"default_kind"`
	DefaultPercent float64 `toml:"default_percent"`
	DefaultMonths  int     `toml:"default_months"`
}

// DaemonConfig holds HTTP daemon settings.
type DaemonConfig struct {
	Addr            string `toml:"addr"`
	RefreshSchedule string `toml:"refresh_schedule"`
	LogLevel        string `toml:"log_level"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	h := forecast.DefaultHorizons()
	return Config{
		General: GeneralConfig{
			ShortMonths:  h.Short,
			MediumMonths: h.Medium,
			LongMonths:   h.Long,
		},
		Scenario: ScenarioConfig{
			DefaultKind:    string(model.ExpenseReduction),
			DefaultPercent: 10,
			DefaultMonths:  12,
		},
		Daemon: DaemonConfig{
			Addr:            "127.0.0.1:8787",
			RefreshSchedule: "*/15 * * * *",
			LogLevel:        "info",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "savecast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "savecast")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Values from the environment (and a .env file in the working directory)
// take precedence over the file.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	_ = godotenv.Load()
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadValidated is Load followed by Validate. Commands that compute
// forecasts use it so out-of-range rates never reach the engine.
func LoadValidated() (Config, error) {
	cfg, err := Load()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides cfg with SAVECAST_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLedgerDir); v != "" {
		cfg.General.LedgerDir = v
	}
	if v := os.Getenv(EnvInflationRate); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvInflationRate, v, err)
		}
		cfg.Forecast.InflationRate = &rate
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Daemon.LogLevel = v
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// LedgerDir resolves the ledger directory, defaulting to ~/savecast.
func LedgerDir(cfg Config) string {
	if cfg.General.LedgerDir != "" {
		return expandHome(cfg.General.LedgerDir)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "savecast")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// ForecastParams builds engine parameters from cfg.
func ForecastParams(cfg Config) forecast.Params {
	p := forecast.DefaultParams()
	if v := cfg.Forecast.InflationRate; v != nil {
		p.InflationRate = *v
	}
	if v := cfg.Forecast.NominalGrowthRate; v != nil {
		p.NominalGrowthRate = *v
	}
	if v := cfg.Forecast.SeasonalDamping; v != nil {
		p.SeasonalDamping = *v
	}
	return p
}

// Horizons returns the configured projection lengths.
func Horizons(cfg Config) forecast.Horizons {
	return forecast.Horizons{
		Short:  cfg.General.ShortMonths,
		Medium: cfg.General.MediumMonths,
		Long:   cfg.General.LongMonths,
	}
}

// Validate checks cfg and reports every problem at once.
func (c Config) Validate() error {
	var errs []string

	for _, h := range []struct {
		name   string
		months int
	}{
		{"short_months", c.General.ShortMonths},
		{"medium_months", c.General.MediumMonths},
		{"long_months", c.General.LongMonths},
	} {
		if h.months < 1 || h.months > MaxHorizonMonths {
			errs = append(errs, fmt.Sprintf("invalid %s %d: must be between 1 and %d", h.name, h.months, MaxHorizonMonths))
		}
	}

	checkRate := func(name string, v *float64) {
		if v != nil && (*v <= -1 || *v > 1) {
			errs = append(errs, fmt.Sprintf("invalid %s %g: must be greater than -1 and at most 1", name, *v))
		}
	}
	checkRate("inflation_rate", c.Forecast.InflationRate)
	checkRate("nominal_growth_rate", c.Forecast.NominalGrowthRate)
	if v := c.Forecast.SeasonalDamping; v != nil && (*v < 0 || *v > 1) {
		errs = append(errs, fmt.Sprintf("invalid seasonal_damping %g: must be between 0 and 1", *v))
	}

	if _, ok := model.ParseScenarioKind(c.Scenario.DefaultKind); !ok {
		errs = append(errs, fmt.Sprintf("invalid scenario kind '%s': must be one of %v",
			c.Scenario.DefaultKind, []model.ScenarioKind{model.ExpenseReduction, model.IncomeIncrease}))
	}
	if c.Scenario.DefaultPercent < 0 || c.Scenario.DefaultPercent > 100 {
		errs = append(errs, fmt.Sprintf("invalid default_percent %g: must be between 0 and 100", c.Scenario.DefaultPercent))
	}
	if c.Scenario.DefaultMonths < 1 || c.Scenario.DefaultMonths > MaxHorizonMonths {
		errs = append(errs, fmt.Sprintf("invalid default_months %d: must be between 1 and %d", c.Scenario.DefaultMonths, MaxHorizonMonths))
	}

	if c.Daemon.Addr == "" {
		errs = append(errs, "daemon addr cannot be empty")
	}
	if _, err := cron.ParseStandard(c.Daemon.RefreshSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("invalid refresh_schedule '%s': %v", c.Daemon.RefreshSchedule, err))
	}
	if _, err := logrus.ParseLevel(c.Daemon.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log_level '%s': %v", c.Daemon.LogLevel, err))
	}

	validTheme := false
	for _, name := range Themes {
		if c.Appearance.Theme == name {
			validTheme = true
			break
		}
	}
	if !validTheme {
		errs = append(errs, fmt.Sprintf("invalid theme '%s': must be one of %v", c.Appearance.Theme, Themes))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
