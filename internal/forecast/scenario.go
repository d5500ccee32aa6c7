package forecast

import (
	"math"

	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/pipeline"
)

// Scenario projects savings over months if expenses fell, or income rose, by
// percent of their monthly average. Percentages are not range-checked and an
// unknown kind leaves the baseline unchanged.
func Scenario(txs []model.Transaction, kind model.ScenarioKind, percent float64, months int) model.ScenarioResult {
	avg := pipeline.MonthlyAverages(txs)
	return scenarioFromAverages(avg, kind, percent, months)
}

func scenarioFromAverages(avg model.Averages, kind model.ScenarioKind, percent float64, months int) model.ScenarioResult {
	adjusted := avg.Savings
	switch kind {
	case model.ExpenseReduction:
		adjusted += avg.Expenses * percent / 100
	case model.IncomeIncrease:
		adjusted += avg.Income * percent / 100
	}

	m := float64(months)
	predicted := adjusted * m
	improvement := predicted - avg.Savings*m

	var monthly float64
	if months > 0 {
		monthly = improvement / m
	}

	return model.ScenarioResult{
		PredictedAmount:    finite(predicted),
		Improvement:        finite(improvement),
		MonthlyImprovement: finite(monthly),
		Scenario:           kind,
		Percentage:         percent,
	}
}

// Sweep evaluates a scenario at each percentage in [from, to] stepping by step.
func Sweep(txs []model.Transaction, kind model.ScenarioKind, from, to, step float64, months int) []model.ScenarioResult {
	if step <= 0 || to < from {
		return nil
	}
	avg := pipeline.MonthlyAverages(txs)
	var results []model.ScenarioResult
	for i := 0; ; i++ {
		p := from + float64(i)*step
		if p > to+1e-9 {
			break
		}
		results = append(results, scenarioFromAverages(avg, kind, p, months))
	}
	return results
}

// finite maps NaN and ±Inf to 0. Scenario values may be negative.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
