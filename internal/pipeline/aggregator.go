// Package pipeline orchestrates ledger loading, caching, and monthly aggregation.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/savecast/internal/model"
)

type monthBucket struct {
	income  decimal.Decimal
	expense decimal.Decimal
	count   int
}

// SortTransactions returns a copy of txs in canonical order: by date, then
// type, amount, category, and ID. The input slice is left untouched.
func SortTransactions(txs []model.Transaction) []model.Transaction {
	sorted := make([]model.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c < 0
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Subcategory != b.Subcategory {
			return a.Subcategory < b.Subcategory
		}
		if a.Description != b.Description {
			return a.Description < b.Description
		}
		return a.ID < b.ID
	})
	return sorted
}

// bucketMonths sums transactions into "YYYY-MM" buckets and returns the
// buckets together with their keys in chronological order.
func bucketMonths(txs []model.Transaction) (map[string]*monthBucket, []string) {
	buckets := make(map[string]*monthBucket)
	for _, t := range txs {
		key := t.MonthKey()
		b, ok := buckets[key]
		if !ok {
			b = &monthBucket{}
			buckets[key] = b
		}
		b.count++
		if t.Type == model.Income {
			b.income = b.income.Add(t.Amount)
		} else {
			b.expense = b.expense.Add(t.Amount)
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	// "YYYY-MM" sorts lexically in calendar order.
	sort.Strings(keys)
	return buckets, keys
}

// AggregateMonths reduces transactions into monthly buckets, oldest first.
// Only months with at least one transaction are returned.
func AggregateMonths(txs []model.Transaction) []model.MonthlyAggregate {
	buckets, keys := bucketMonths(txs)

	months := make([]model.MonthlyAggregate, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		months = append(months, model.MonthlyAggregate{
			Month:        k,
			IncomeTotal:  b.income.InexactFloat64(),
			ExpenseTotal: b.expense.InexactFloat64(),
			NetSavings:   b.income.Sub(b.expense).InexactFloat64(),
			Count:        b.count,
		})
	}
	return months
}

// MonthlySeries returns the chronological signed net-savings series.
func MonthlySeries(txs []model.Transaction) []model.MonthlyPoint {
	buckets, keys := bucketMonths(txs)

	series := make([]model.MonthlyPoint, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		series = append(series, model.MonthlyPoint{
			Month:      k,
			NetSavings: b.income.Sub(b.expense).InexactFloat64(),
		})
	}
	return series
}

// SeriesValues extracts the net-savings values from a monthly series.
func SeriesValues(series []model.MonthlyPoint) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.NetSavings
	}
	return values
}

// MonthlyAverages computes mean monthly income, expenses, and savings over
// the months that have data. All values are zero for an empty ledger.
func MonthlyAverages(txs []model.Transaction) model.Averages {
	buckets, keys := bucketMonths(txs)
	if len(keys) == 0 {
		return model.Averages{}
	}

	var income, expense decimal.Decimal
	for _, b := range buckets {
		income = income.Add(b.income)
		expense = expense.Add(b.expense)
	}

	n := float64(len(keys))
	avgIncome := income.InexactFloat64() / n
	avgExpense := expense.InexactFloat64() / n
	return model.Averages{
		Income:   avgIncome,
		Expenses: avgExpense,
		Savings:  avgIncome - avgExpense,
		Months:   len(keys),
	}
}

// AggregateCategories computes per-category totals, sorted by total descending.
// Income and expense categories are reported separately; SharePercent is
// relative to the total of the same type.
func AggregateCategories(txs []model.Transaction) []model.CategoryStats {
	type catKey struct {
		name string
		typ  model.TxType
	}

	_, monthKeys := bucketMonths(txs)
	totals := make(map[catKey]decimal.Decimal)
	stats := make(map[catKey]*model.CategoryStats)
	typeTotals := make(map[model.TxType]decimal.Decimal)

	for _, t := range txs {
		k := catKey{name: t.Category, typ: t.Type}
		cs, ok := stats[k]
		if !ok {
			cs = &model.CategoryStats{Category: t.Category, Type: t.Type}
			stats[k] = cs
		}
		cs.Count++
		if t.IsRecurring {
			cs.RecurringCount++
		}
		totals[k] = totals[k].Add(t.Amount)
		typeTotals[t.Type] = typeTotals[t.Type].Add(t.Amount)
	}

	result := make([]model.CategoryStats, 0, len(stats))
	for k, cs := range stats {
		cs.Total = totals[k].InexactFloat64()
		if len(monthKeys) > 0 {
			cs.MonthlyAvg = cs.Total / float64(len(monthKeys))
		}
		if tt := typeTotals[k.typ]; tt.IsPositive() {
			cs.SharePercent = totals[k].Div(tt).InexactFloat64() * 100
		}
		result = append(result, *cs)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return result[i].Type > result[j].Type // income first
		}
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// DataTimeSpan returns the number of whole months between the earliest and
// latest transaction dates.
func DataTimeSpan(txs []model.Transaction) int {
	if len(txs) == 0 {
		return 0
	}
	earliest, latest := txs[0].Date, txs[0].Date
	for _, t := range txs[1:] {
		if t.Date.Before(earliest) {
			earliest = t.Date
		}
		if t.Date.After(latest) {
			latest = t.Date
		}
	}

	months := (latest.Year()-earliest.Year())*12 + int(latest.Month()) - int(earliest.Month())
	if latest.Day() < earliest.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months
}

// FilterByTime returns transactions dated within [since, until).
// A zero bound is treated as open.
func FilterByTime(txs []model.Transaction, since, until time.Time) []model.Transaction {
	if since.IsZero() && until.IsZero() {
		return txs
	}

	var result []model.Transaction
	for _, t := range txs {
		if !since.IsZero() && t.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !t.Date.Before(until) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// FilterByCategory returns transactions whose category or subcategory
// contains substr (case-insensitive).
func FilterByCategory(txs []model.Transaction, substr string) []model.Transaction {
	if substr == "" {
		return txs
	}
	var result []model.Transaction
	for _, t := range txs {
		if containsIgnoreCase(t.Category, substr) || containsIgnoreCase(t.Subcategory, substr) {
			result = append(result, t)
		}
	}
	return result
}

// FilterRecurring returns only recurring transactions.
func FilterRecurring(txs []model.Transaction) []model.Transaction {
	var result []model.Transaction
	for _, t := range txs {
		if t.IsRecurring {
			result = append(result, t)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// FilterOptions selects the subset of a ledger that reports and forecasts
// are computed from. Zero values select everything.
type FilterOptions struct {
	Since         time.Time
	Until         time.Time
	Category      string
	RecurringOnly bool
}

// ApplyFilters applies every filter set in opts.
func ApplyFilters(txs []model.Transaction, opts FilterOptions) []model.Transaction {
	filtered := FilterByTime(txs, opts.Since, opts.Until)
	filtered = FilterByCategory(filtered, opts.Category)
	if opts.RecurringOnly {
		filtered = FilterRecurring(filtered)
	}
	return filtered
}
