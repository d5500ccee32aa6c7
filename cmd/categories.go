package cmd

import (
	"fmt"

	"github.com/theirongolddev/savecast/internal/cli"
	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/pipeline"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Income and expense totals by category",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	txs, err := loadFiltered()
	if err != nil {
		return err
	}
	cats := pipeline.AggregateCategories(txs)
	if len(cats) == 0 {
		printNoData()
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CATEGORIES"))
	fmt.Println()

	rows := make([][]string, 0, len(cats)+1)
	lastType := cats[0].Type
	for _, c := range cats {
		if c.Type != lastType {
			rows = append(rows, []string{"---"})
			lastType = c.Type
		}
		kind := "in"
		if c.Type == model.Expense {
			kind = "out"
		}
		rows = append(rows, []string{
			c.Category,
			kind,
			cli.FormatAmount(c.Total),
			cli.FormatAmount(c.MonthlyAvg),
			fmt.Sprintf("%d/%d", c.RecurringCount, c.Count),
			cli.FormatPercentValue(c.SharePercent),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Dir", "Total", "Per month", "Recurring", "Share"},
		Rows:    rows,
	}))
	return nil
}
