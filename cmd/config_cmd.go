package cmd

import (
	"fmt"

	"github.com/theirongolddev/savecast/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show current configuration",
	Annotations: map[string]string{rawConfigAnnotation: "true"},
	RunE:        runConfig,
}

var configValidateCmd = &cobra.Command{
	Use:         "validate",
	Short:       "Check the configuration file for errors",
	Annotations: map[string]string{rawConfigAnnotation: "true"},
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := appCfg.Validate(); err != nil {
			return err
		}
		fmt.Println("  Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func optRate(v *float64, def float64) string {
	if v == nil {
		return fmt.Sprintf("%.2f%% (default)", def*100)
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	params := config.ForecastParams(cfg)

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Ledger directory:  %s\n", flagLedgerDir)
	fmt.Printf("    Horizons:          %d / %d / %d months\n",
		cfg.General.ShortMonths, cfg.General.MediumMonths, cfg.General.LongMonths)
	fmt.Printf("    Recurring only:    %v\n", cfg.General.IncludeRecurringOnly)
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Inflation rate:    %s\n", optRate(cfg.Forecast.InflationRate, params.InflationRate))
	fmt.Printf("    Nominal growth:    %s\n", optRate(cfg.Forecast.NominalGrowthRate, params.NominalGrowthRate))
	fmt.Printf("    Seasonal damping:  %.2f\n", params.SeasonalDamping)
	fmt.Println()

	fmt.Println("  [Scenario]")
	fmt.Printf("    Default kind:      %s\n", cfg.Scenario.DefaultKind)
	fmt.Printf("    Default percent:   %g%%\n", cfg.Scenario.DefaultPercent)
	fmt.Printf("    Default months:    %d\n", cfg.Scenario.DefaultMonths)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:           %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Refresh schedule:  %s\n", cfg.Daemon.RefreshSchedule)
	fmt.Printf("    Log level:         %s\n", cfg.Daemon.LogLevel)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Printf("  %v\n\n", err)
	}
	fmt.Println("  Run `savecast setup` to reconfigure.")
	return nil
}
