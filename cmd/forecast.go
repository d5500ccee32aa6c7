package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/config"
	"github.com/theirongolddev/savecast/internal/forecast"
	"github.com/theirongolddev/savecast/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagShortMonths  int
	flagMediumMonths int
	flagLongMonths   int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project net savings over short, medium and long horizons",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().IntVar(&flagShortMonths, "short", 0, "Short horizon in months (default from config)")
	forecastCmd.Flags().IntVar(&flagMediumMonths, "medium", 0, "Medium horizon in months (default from config)")
	forecastCmd.Flags().IntVar(&flagLongMonths, "long", 0, "Long horizon in months (default from config)")
	rootCmd.AddCommand(forecastCmd)
}

func horizonsFromFlags() (forecast.Horizons, error) {
	h := config.Horizons(appCfg)
	for _, o := range []struct {
		name string
		v    int
		dst  *int
	}{
		{"short", flagShortMonths, &h.Short},
		{"medium", flagMediumMonths, &h.Medium},
		{"long", flagLongMonths, &h.Long},
	} {
		if err := checkMonthsFlag(o.name, o.v); err != nil {
			return h, err
		}
		if o.v > 0 {
			*o.dst = o.v
		}
	}
	return h, nil
}

func runForecast(_ *cobra.Command, _ []string) error {
	h, err := horizonsFromFlags()
	if err != nil {
		return err
	}
	fc, err := newForecaster()
	if err != nil {
		return err
	}

	txs, err := loadFiltered()
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		printNoData()
		return nil
	}

	avg := pipeline.MonthlyAverages(txs)
	span := pipeline.DataTimeSpan(txs)
	results := fc.Forecast(txs, h)

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS FORECAST"))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Ledger", "Value"},
		Rows: [][]string{
			{"Transactions", cli.FormatNumber(int64(len(txs)))},
			{"Months observed", fmt.Sprintf("%d (span %s)", avg.Months, cli.FormatHorizon(span))},
			{"---"},
			{"Avg income", cli.FormatAmount(avg.Income)},
			{"Avg expenses", cli.FormatAmount(avg.Expenses)},
			{"Avg savings", cli.RenderSigned(cli.FormatAmount(avg.Savings), avg.Savings)},
		},
	}))
	fmt.Println()

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			strings.ToUpper(string(r.Period[:1])) + string(r.Period[1:]),
			cli.FormatHorizon(r.Months),
			cli.FormatAmount(r.PredictedAmount),
			cli.FormatAmount(r.MonthlyAmount()),
			cli.RenderConfidence(r.Confidence, 10),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Projected net savings",
		Headers: []string{"Horizon", "Months", "Total", "Per month", "Confidence"},
		Rows:    rows,
	}))

	fmt.Println()
	for _, r := range results {
		fmt.Printf("  %s: %s\n", r.Period, cli.RenderMuted(strings.Join(r.Factors, ", ")))
	}
	if avg.Months < 3 {
		fmt.Println()
		fmt.Println(cli.RenderMuted("  Fewer than 3 months of data; confidence is low."))
	}
	return nil
}
