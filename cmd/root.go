// Package cmd implements the savecast CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/config"
	"github.com/theirongolddev/savecast/internal/forecast"
	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/pipeline"
	"github.com/theirongolddev/savecast/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagLedgerDir string
	flagCategory  string
	flagSince     string
	flagUntil     string
	flagRecurring bool
	flagNoCache   bool
	flagQuiet     bool
	flagAsOf      string
)

// appCfg is the loaded configuration, populated before any command runs.
var appCfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "savecast",
	Short:             "Savings forecasting CLI",
	Long:              "Project future net savings from your income and expense ledger.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runForecast,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagLedgerDir, "ledger-dir", "d", "", "Ledger directory (default from config, then ~/savecast)")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter to category or subcategory")
	rootCmd.PersistentFlags().StringVar(&flagSince, "since", "", "Only use transactions on or after this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagUntil, "until", "", "Only use transactions before this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().BoolVar(&flagRecurring, "recurring-only", false, "Only use recurring transactions")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "Treat this date as today for seasonal adjustment (YYYY-MM-DD)")
}

// loadConfig reads the config file and fills flags left unset from it.
// checkMonthsFlag validates a month-count flag, where 0 means "not set".
func checkMonthsFlag(name string, v int) error {
	if v < 0 || v > config.MaxHorizonMonths {
		return fmt.Errorf("--%s must be between 1 and %d, got %d", name, config.MaxHorizonMonths, v)
	}
	return nil
}

// rawConfigAnnotation marks commands that must run on an invalid config
// so it can be inspected or repaired.
const rawConfigAnnotation = "raw-config"

func loadConfig(cmd *cobra.Command, _ []string) error {
	load := config.LoadValidated
	if cmd.Annotations[rawConfigAnnotation] != "" {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return fmt.Errorf("%w\n  Fix %s or run `savecast setup`", err, config.Path())
	}
	appCfg = cfg

	if flagLedgerDir == "" {
		flagLedgerDir = config.LedgerDir(cfg)
	}
	if !cmd.Flags().Changed("recurring-only") && cfg.General.IncludeRecurringOnly {
		flagRecurring = true
	}
	return nil
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData() (*pipeline.LoadResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", flagLedgerDir)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%50 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(flagLedgerDir, cache, progressFn)
			if err != nil {
				if !flagQuiet {
					fmt.Fprintf(os.Stderr, "\n  Cache error, falling back to full parse\n")
				}
			} else {
				if !flagQuiet && cr.TotalFiles > 0 {
					if cr.Reparsed == 0 {
						fmt.Fprintf(os.Stderr, "\r  Loaded %s transactions from cache (%d accounts)    \n",
							cli.FormatNumber(int64(len(cr.Transactions))),
							cr.AccountCount,
						)
					} else {
						fmt.Fprintf(os.Stderr, "\r  %d cached + %d reparsed files (%d accounts)    \n",
							cr.CacheHits,
							cr.Reparsed,
							cr.AccountCount,
						)
					}
				}
				reportParseErrors(&cr.LoadResult)
				return &cr.LoadResult, nil
			}
		}
	}

	result, err := pipeline.Load(flagLedgerDir, progressFn)
	if err != nil {
		return nil, err
	}

	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s transactions from %d files (%d accounts)    \n",
			cli.FormatNumber(int64(len(result.Transactions))),
			result.ParsedFiles,
			result.AccountCount,
		)
	}
	reportParseErrors(result)
	return result, nil
}

func reportParseErrors(r *pipeline.LoadResult) {
	if flagQuiet {
		return
	}
	if r.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d lines skipped", r.ParseErrors)
		if r.FirstError != nil {
			fmt.Fprintf(os.Stderr, " (first: %v)", r.FirstError)
		}
		fmt.Fprintln(os.Stderr)
	}
	if r.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d files could not be read\n", r.FileErrors)
	}
}

// filterOptions builds pipeline filters from the persistent flags.
func filterOptions() (pipeline.FilterOptions, error) {
	opts := pipeline.FilterOptions{
		Category:      flagCategory,
		RecurringOnly: flagRecurring,
	}
	var err error
	if flagSince != "" {
		if opts.Since, err = time.Parse(model.DateLayout, flagSince); err != nil {
			return opts, fmt.Errorf("invalid --since %q: %w", flagSince, err)
		}
	}
	if flagUntil != "" {
		if opts.Until, err = time.Parse(model.DateLayout, flagUntil); err != nil {
			return opts, fmt.Errorf("invalid --until %q: %w", flagUntil, err)
		}
	}
	return opts, nil
}

// loadFiltered loads the ledger and applies the persistent filters.
func loadFiltered() ([]model.Transaction, error) {
	opts, err := filterOptions()
	if err != nil {
		return nil, err
	}
	result, err := loadData()
	if err != nil {
		return nil, err
	}
	return pipeline.ApplyFilters(result.Transactions, opts), nil
}

// newForecaster builds a forecaster from config and the --as-of flag.
func newForecaster() (forecast.Forecaster, error) {
	p := config.ForecastParams(appCfg)
	if flagAsOf != "" {
		asOf, err := time.Parse(model.DateLayout, flagAsOf)
		if err != nil {
			return forecast.Forecaster{}, fmt.Errorf("invalid --as-of %q: %w", flagAsOf, err)
		}
		p.AsOf = asOf
	}
	return forecast.New(p), nil
}

func printNoData() {
	fmt.Println("\n  No transactions found.")
	fmt.Printf("  Add .jsonl or .csv ledger files under %s\n", flagLedgerDir)
}
