package cmd

import (
	"fmt"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/config"
	"github.com/theirongolddev/savecast/internal/model"

	"github.com/spf13/cobra"
)

var flagPredictMonths int

var predictCmd = &cobra.Command{
	Use:       "predict <short|medium|long>",
	Short:     "Project net savings for a single horizon",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(model.Short), string(model.Medium), string(model.Long)},
	RunE:      runPredict,
}

func init() {
	predictCmd.Flags().IntVarP(&flagPredictMonths, "months", "m", 0, "Months to project (default from config for the period)")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(_ *cobra.Command, args []string) error {
	period, ok := model.ParsePeriod(args[0])
	if !ok {
		return fmt.Errorf("unknown period %q: must be one of %v", args[0], model.Periods)
	}
	if err := checkMonthsFlag("months", flagPredictMonths); err != nil {
		return err
	}

	months := flagPredictMonths
	if months == 0 {
		h := config.Horizons(appCfg)
		switch period {
		case model.Short:
			months = h.Short
		case model.Medium:
			months = h.Medium
		case model.Long:
			months = h.Long
		}
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

	r, err := fc.Predict(txs, period, months)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PREDICTION  %s, %s", period, cli.FormatHorizon(months))))
	fmt.Println()

	rows := [][]string{
		{"Total", cli.FormatAmount(r.PredictedAmount)},
		{"Per month", cli.FormatAmount(r.MonthlyAmount())},
		{"Confidence", cli.RenderConfidence(r.Confidence, 12)},
		{"---"},
	}
	for i, f := range r.Factors {
		label := ""
		if i == 0 {
			label = "Factors"
		}
		rows = append(rows, []string{label, f})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	return nil
}
