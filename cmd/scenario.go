package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/forecast"
	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagScenarioKind    string
	flagScenarioPercent float64
	flagScenarioMonths  int
	flagScenarioSweep   string
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "What-if analysis: cut expenses or raise income by a percentage",
	Example: `  savecast scenario --kind expense_reduction --percent 15
  savecast scenario --kind income_increase --sweep 0:20:5`,
	RunE: runScenario,
}

func init() {
	scenarioCmd.Flags().StringVarP(&flagScenarioKind, "kind", "k", "", "expense_reduction or income_increase (default from config)")
	scenarioCmd.Flags().Float64VarP(&flagScenarioPercent, "percent", "p", 0, "Adjustment in percent (default from config)")
	scenarioCmd.Flags().IntVarP(&flagScenarioMonths, "months", "m", 0, "Months to project (default from config)")
	scenarioCmd.Flags().StringVar(&flagScenarioSweep, "sweep", "", "Evaluate a range of percentages, FROM:TO:STEP")
	rootCmd.AddCommand(scenarioCmd)
}

// parseSweep parses "FROM:TO:STEP".
func parseSweep(s string) (from, to, step float64, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid --sweep %q: want FROM:TO:STEP", s)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid --sweep %q: %w", s, err)
		}
	}
	from, to, step = vals[0], vals[1], vals[2]
	if step <= 0 || to < from {
		return 0, 0, 0, fmt.Errorf("invalid --sweep %q: need FROM <= TO and STEP > 0", s)
	}
	return from, to, step, nil
}

// scenarioInputs merges the scenario flags over the config defaults. An
// explicit --percent is passed through even when out of range.
func scenarioInputs(cmd *cobra.Command) (model.ScenarioKind, float64, int, error) {
	kindName := appCfg.Scenario.DefaultKind
	if flagScenarioKind != "" {
		kindName = flagScenarioKind
	}
	kind, ok := model.ParseScenarioKind(kindName)
	if !ok {
		return "", 0, 0, fmt.Errorf("unknown scenario kind %q: must be %s or %s", kindName, model.ExpenseReduction, model.IncomeIncrease)
	}

	percent := appCfg.Scenario.DefaultPercent
	if cmd.Flags().Changed("percent") {
		percent = flagScenarioPercent
	}
	if err := checkMonthsFlag("months", flagScenarioMonths); err != nil {
		return "", 0, 0, err
	}
	months := appCfg.Scenario.DefaultMonths
	if flagScenarioMonths > 0 {
		months = flagScenarioMonths
	}
	return kind, percent, months, nil
}

func runScenario(cmd *cobra.Command, _ []string) error {
	kind, percent, months, err := scenarioInputs(cmd)
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
	baseline := avg.Savings * float64(months)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCENARIO  %s, %s", kind, cli.FormatHorizon(months))))
	fmt.Println()

	if flagScenarioSweep != "" {
		from, to, step, err := parseSweep(flagScenarioSweep)
		if err != nil {
			return err
		}
		results := forecast.Sweep(txs, kind, from, to, step, months)
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{
				cli.FormatPercentValue(r.Percentage),
				cli.FormatAmount(r.PredictedAmount),
				cli.RenderSigned(cli.FormatDelta(r.Improvement), r.Improvement),
				cli.FormatDelta(r.MonthlyImprovement),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Baseline " + cli.FormatAmount(baseline),
			Headers: []string{"Change", "Projected", "Improvement", "Per month"},
			Rows:    rows,
		}))
		return nil
	}

	r := forecast.Scenario(txs, kind, percent, months)
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Adjustment", cli.FormatPercentValue(r.Percentage)},
			{"Baseline", cli.FormatAmount(baseline)},
			{"Projected", cli.FormatAmount(r.PredictedAmount)},
			{"---"},
			{"Improvement", cli.RenderSigned(cli.FormatDelta(r.Improvement), r.Improvement)},
			{"Per month", cli.FormatDelta(r.MonthlyImprovement)},
		},
	}))
	return nil
}
