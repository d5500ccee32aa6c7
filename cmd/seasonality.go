package cmd

import (
	"fmt"
	"math"

	"github.com/theirongolddev/savecast/internal/cli"

	"github.com/spf13/cobra"
)

var seasonalityCmd = &cobra.Command{
	Use:   "seasonality",
	Short: "Per-calendar-month savings strength",
	RunE:  runSeasonality,
}

func init() {
	rootCmd.AddCommand(seasonalityCmd)
}

func runSeasonality(_ *cobra.Command, _ []string) error {
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

	strength := fc.Seasonality(txs)
	limit := 0.0
	for _, v := range strength {
		limit = math.Max(limit, math.Abs(v))
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SEASONALITY"))
	fmt.Println()

	rows := make([][]string, 0, len(strength))
	for i, v := range strength {
		rows = append(rows, []string{
			cli.MonthName(i),
			fmt.Sprintf("%+.3f", v),
			cli.RenderDivergingBar(v, limit, 12),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Strength", "Below / above average"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Println(cli.RenderMuted("  Strength is how far a month's savings sit from the overall mean, in standard deviations."))
	return nil
}
