package model

// MonthlyAggregate holds the totals for a single "YYYY-MM" bucket.
type MonthlyAggregate struct {
	Month        string  `json:"month"`
	IncomeTotal  float64 `json:"income_total"`
	ExpenseTotal float64 `json:"expense_total"`
	NetSavings   float64 `json:"net_savings"`
	Count        int     `json:"count"`
}

// MonthlyPoint is one entry of the chronological net-savings series.
type MonthlyPoint struct {
	Month      string  `json:"month"`
	NetSavings float64 `json:"net_savings"`
}

// Averages holds per-month means across all observed months.
type Averages struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Savings  float64 `json:"savings"`
	Months   int     `json:"months"`
}

// CategoryStats holds totals for one category across the ledger.
type CategoryStats struct {
	Category       string  `json:"category"`
	Type           TxType  `json:"type"`
	Total          float64 `json:"total"`
	MonthlyAvg     float64 `json:"monthly_avg"`
	Count          int     `json:"count"`
	RecurringCount int     `json:"recurring_count"`
	SharePercent   float64 `json:"share_percent"`
}

// Period is the horizon category of a prediction.
type Period string

// Prediction periods.
const (
	Short  Period = "short"
	Medium Period = "medium"
	Long   Period = "long"
)

// Periods lists all periods in display order.
var Periods = []Period{Short, Medium, Long}

// ParsePeriod converts s to a Period.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case Short, Medium, Long:
		return Period(s), true
	}
	return "", false
}

// PredictionResult is the projected net savings for one horizon.
type PredictionResult struct {
	Period          Period   `json:"period"`
	Months          int      `json:"months"`
	PredictedAmount float64  `json:"predicted_amount"`
	Confidence      float64  `json:"confidence"`
	Factors         []string `json:"factors"`
}

// MonthlyAmount returns the predicted amount spread evenly over the horizon.
func (p PredictionResult) MonthlyAmount() float64 {
	if p.Months <= 0 {
		return 0
	}
	return p.PredictedAmount / float64(p.Months)
}

// ScenarioKind names a hypothetical adjustment.
type ScenarioKind string

// Scenario kinds.
const (
	ExpenseReduction ScenarioKind = "expense_reduction"
	IncomeIncrease   ScenarioKind = "income_increase"
)

// ParseScenarioKind converts s to a ScenarioKind.
func ParseScenarioKind(s string) (ScenarioKind, bool) {
	switch ScenarioKind(s) {
	case ExpenseReduction, IncomeIncrease:
		return ScenarioKind(s), true
	}
	return "", false
}

// ScenarioResult is the outcome of a what-if adjustment.
type ScenarioResult struct {
	PredictedAmount    float64      `json:"predicted_amount"`
	Improvement        float64      `json:"improvement"`
	MonthlyImprovement float64      `json:"monthly_improvement"`
	Scenario           ScenarioKind `json:"scenario"`
	Percentage         float64      `json:"percentage"`
}
