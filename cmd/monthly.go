package cmd

import (
	"fmt"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/pipeline"

	"github.com/spf13/cobra"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Monthly income, expense and net savings table",
	RunE:  runMonthly,
}

func init() {
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(_ *cobra.Command, _ []string) error {
	txs, err := loadFiltered()
	if err != nil {
		return err
	}
	months := pipeline.AggregateMonths(txs)
	if len(months) == 0 {
		printNoData()
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY LEDGER  %d months", len(months))))
	fmt.Println()

	rows := make([][]string, 0, len(months)+2)
	var income, expenses float64
	for _, m := range months {
		income += m.IncomeTotal
		expenses += m.ExpenseTotal
		rows = append(rows, []string{
			cli.FormatMonth(m.Month),
			cli.FormatAmount(m.IncomeTotal),
			cli.FormatAmount(m.ExpenseTotal),
			cli.RenderSigned(cli.FormatAmount(m.NetSavings), m.NetSavings),
			cli.FormatNumber(int64(m.Count)),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		"Total",
		cli.FormatAmount(income),
		cli.FormatAmount(expenses),
		cli.RenderSigned(cli.FormatAmount(income-expenses), income-expenses),
		cli.FormatNumber(int64(len(txs))),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Income", "Expenses", "Net", "Txns"},
		Rows:    rows,
	}))

	series := pipeline.SeriesValues(pipeline.MonthlySeries(txs))
	fmt.Println()
	fmt.Printf("  Net savings  %s\n", cli.RenderSparkline(series))
	return nil
}
