package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/savecast/internal/model"
)

func mkTx(t *testing.T, id string, typ model.TxType, amount, category, date string, recurring bool) model.Transaction {
	t.Helper()
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		t.Fatalf("parse %q: %v", date, err)
	}
	return model.Transaction{
		ID:          id,
		Type:        typ,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Date:        d,
		IsRecurring: recurring,
	}
}

func sampleLedger(t *testing.T) []model.Transaction {
	t.Helper()
	return []model.Transaction{
		mkTx(t, "1", model.Income, "350000", "Salary", "2024-01-25", true),
		mkTx(t, "2", model.Expense, "120000", "Housing", "2024-01-01", true),
		mkTx(t, "3", model.Expense, "75000", "Food", "2024-01-15", false),
		mkTx(t, "4", model.Income, "350000", "Salary", "2024-02-25", true),
		mkTx(t, "5", model.Expense, "120000", "Housing", "2024-02-01", true),
		mkTx(t, "6", model.Expense, "30000", "Food", "2024-02-10", false),
	}
}

func TestAggregateMonths(t *testing.T) {
	months := AggregateMonths(sampleLedger(t))
	if len(months) != 2 {
		t.Fatalf("len = %d, want 2", len(months))
	}

	jan := months[0]
	if jan.Month != "2024-01" {
		t.Errorf("first month = %s, want 2024-01", jan.Month)
	}
	if jan.IncomeTotal != 350000 || jan.ExpenseTotal != 195000 || jan.NetSavings != 155000 {
		t.Errorf("2024-01 = %+v, want 350000/195000/155000", jan)
	}
	if jan.Count != 3 {
		t.Errorf("Count = %d, want 3", jan.Count)
	}
	if months[1].NetSavings != 200000 {
		t.Errorf("2024-02 net = %f, want 200000", months[1].NetSavings)
	}
}

func TestAggregateMonthsSkipsEmptyMonths(t *testing.T) {
	txs := []model.Transaction{
		mkTx(t, "a", model.Income, "10", "x", "2023-11-02", false),
		mkTx(t, "b", model.Income, "10", "x", "2024-03-02", false),
	}
	months := AggregateMonths(txs)
	if len(months) != 2 || months[0].Month != "2023-11" || months[1].Month != "2024-03" {
		t.Errorf("months = %+v", months)
	}
}

func TestMonthlyAverages(t *testing.T) {
	avg := MonthlyAverages(sampleLedger(t))
	if avg.Months != 2 {
		t.Errorf("Months = %d, want 2", avg.Months)
	}
	if avg.Income != 350000 {
		t.Errorf("Income = %f, want 350000", avg.Income)
	}
	if avg.Expenses != 172500 {
		t.Errorf("Expenses = %f, want 172500", avg.Expenses)
	}
	if avg.Savings != 177500 {
		t.Errorf("Savings = %f, want 177500", avg.Savings)
	}

	if got := MonthlyAverages(nil); got != (model.Averages{}) {
		t.Errorf("MonthlyAverages(nil) = %+v, want zero", got)
	}
}

func TestDecimalSumsAreExact(t *testing.T) {
	var txs []model.Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, mkTx(t, "", model.Income, "0.1", "x", "2024-05-01", false))
	}
	months := AggregateMonths(txs)
	if months[0].IncomeTotal != 1 {
		t.Errorf("ten × 0.1 = %v, want exactly 1", months[0].IncomeTotal)
	}
}

func TestSortTransactionsCopies(t *testing.T) {
	txs := sampleLedger(t)
	sorted := SortTransactions(txs)
	if txs[0].ID != "1" {
		t.Error("input was reordered")
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Before(sorted[i-1].Date) {
			t.Fatalf("not sorted at %d", i)
		}
	}
	if sorted[0].ID != "2" {
		t.Errorf("first = %s, want 2", sorted[0].ID)
	}
}

func TestMonthlySeries(t *testing.T) {
	series := MonthlySeries(sampleLedger(t))
	values := SeriesValues(series)
	if len(values) != 2 || values[0] != 155000 || values[1] != 200000 {
		t.Errorf("series = %v, want [155000 200000]", values)
	}
}

func TestAggregateCategories(t *testing.T) {
	cats := AggregateCategories(sampleLedger(t))
	if len(cats) != 3 {
		t.Fatalf("len = %d, want 3", len(cats))
	}
	if cats[0].Category != "Salary" || cats[0].Type != model.Income {
		t.Errorf("first = %s/%s, want Salary/income", cats[0].Category, cats[0].Type)
	}
	if cats[0].SharePercent != 100 {
		t.Errorf("Salary share = %f, want 100", cats[0].SharePercent)
	}

	housing := cats[1]
	if housing.Category != "Housing" || housing.Total != 240000 {
		t.Errorf("second = %+v, want Housing 240000", housing)
	}
	if housing.RecurringCount != 2 || housing.MonthlyAvg != 120000 {
		t.Errorf("Housing = %+v", housing)
	}

	food := cats[2]
	if food.Count != 2 || food.RecurringCount != 0 {
		t.Errorf("Food = %+v", food)
	}
}

func TestDataTimeSpan(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"empty", nil, 0},
		{"same day", []string{"2024-01-01"}, 0},
		{"partial month", []string{"2024-01-25", "2024-02-10"}, 0},
		{"one month", []string{"2024-01-10", "2024-02-10"}, 1},
		{"over a year", []string{"2024-03-01", "2023-01-15", "2024-01-20"}, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txs []model.Transaction
			for _, d := range tt.dates {
				txs = append(txs, mkTx(t, d, model.Income, "1", "x", d, false))
			}
			if got := DataTimeSpan(txs); got != tt.want {
				t.Errorf("DataTimeSpan = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFilters(t *testing.T) {
	txs := sampleLedger(t)

	since := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if got := FilterByTime(txs, since, time.Time{}); len(got) != 3 {
		t.Errorf("FilterByTime since = %d, want 3", len(got))
	}
	if got := FilterByTime(txs, time.Time{}, since); len(got) != 3 {
		t.Errorf("FilterByTime until = %d, want 3", len(got))
	}
	if got := FilterByTime(txs, time.Time{}, time.Time{}); len(got) != len(txs) {
		t.Errorf("open range = %d, want %d", len(got), len(txs))
	}

	if got := FilterByCategory(txs, "food"); len(got) != 2 {
		t.Errorf("FilterByCategory = %d, want 2", len(got))
	}
	if got := FilterRecurring(txs); len(got) != 4 {
		t.Errorf("FilterRecurring = %d, want 4", len(got))
	}
}

func TestApplyFilters(t *testing.T) {
	txs := sampleLedger(t)
	got := ApplyFilters(txs, FilterOptions{
		Since:         time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		RecurringOnly: true,
	})
	if len(got) != 2 {
		t.Errorf("ApplyFilters = %d, want 2", len(got))
	}
	if got := ApplyFilters(txs, FilterOptions{}); len(got) != len(txs) {
		t.Errorf("zero options = %d, want %d", len(got), len(txs))
	}
}
