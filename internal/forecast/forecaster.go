package forecast

import (
	"fmt"
	"math"

	"github.com/theirongolddev/savecast/internal/model"
	"github.com/theirongolddev/savecast/internal/pipeline"
)

var factorLabels = map[model.Period][]string{
	model.Short:  {"Past spending patterns", "Seasonal factors", "Recurring income"},
	model.Medium: {"Income growth trend", "Inflation rate", "Life events"},
	model.Long:   {"Investment returns", "Long-term economic growth", "Inflation adjustment"},
}

// Factors returns the influencing factors reported for a period.
func Factors(period model.Period) []string {
	src := factorLabels[period]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Forecaster projects savings with a fixed set of Params. It holds no
// mutable state and is safe for concurrent use.
type Forecaster struct {
	params Params
}

// New returns a Forecaster using p. Unusable zero values (ceilings, volume
// saturation, all-zero weights) fall back to DefaultParams.
func New(p Params) Forecaster {
	return Forecaster{params: p.withDefaults()}
}

// Params returns the effective parameters.
func (f Forecaster) Params() Params {
	return f.params
}

// analysis is the per-call reduction of a ledger shared by all horizons.
type analysis struct {
	avg      model.Averages
	series   []float64
	trend    float64
	strength [12]float64
	count    int
}

func analyze(txs []model.Transaction) analysis {
	sorted := pipeline.SortTransactions(txs)
	series := pipeline.SeriesValues(pipeline.MonthlySeries(sorted))
	return analysis{
		avg:      pipeline.MonthlyAverages(sorted),
		series:   series,
		trend:    Slope(series),
		strength: Seasonality(sorted),
		count:    len(sorted),
	}
}

// Short projects cumulative savings over months with a trend and seasonal
// correction.
func (f Forecaster) Short(txs []model.Transaction, months int) model.PredictionResult {
	return f.short(analyze(txs), months)
}

// Medium projects cumulative savings over months, discounting each month by
// inflation.
func (f Forecaster) Medium(txs []model.Transaction, months int) model.PredictionResult {
	return f.medium(analyze(txs), months)
}

// Long projects cumulative savings over months with monthly compounding at
// the real growth rate.
func (f Forecaster) Long(txs []model.Transaction, months int) model.PredictionResult {
	return f.long(analyze(txs), months)
}

// Predict dispatches to the projection for period.
func (f Forecaster) Predict(txs []model.Transaction, period model.Period, months int) (model.PredictionResult, error) {
	a := analyze(txs)
	switch period {
	case model.Short:
		return f.short(a, months), nil
	case model.Medium:
		return f.medium(a, months), nil
	case model.Long:
		return f.long(a, months), nil
	}
	return model.PredictionResult{}, fmt.Errorf("unknown period %q", period)
}

// Forecast returns short, medium and long projections in that order.
func (f Forecaster) Forecast(txs []model.Transaction, h Horizons) []model.PredictionResult {
	a := analyze(txs)
	return []model.PredictionResult{
		f.short(a, h.Short),
		f.medium(a, h.Medium),
		f.long(a, h.Long),
	}
}

// Scenario evaluates a what-if adjustment. See the package-level Scenario.
func (f Forecaster) Scenario(txs []model.Transaction, kind model.ScenarioKind, percent float64, months int) model.ScenarioResult {
	return Scenario(txs, kind, percent, months)
}

// Seasonality returns the per-calendar-month strength of txs.
func (f Forecaster) Seasonality(txs []model.Transaction) [12]float64 {
	return Seasonality(pipeline.SortTransactions(txs))
}

func (f Forecaster) short(a analysis, months int) model.PredictionResult {
	m := float64(months)
	seasonal := SeasonalAdjustment(a.strength, a.avg.Savings, f.params.currentMonth(), months, f.params.SeasonalDamping)
	amount := a.avg.Savings*m + a.trend*m*(m/12) + seasonal
	return f.result(a, model.Short, months, amount)
}

func (f Forecaster) medium(a analysis, months int) model.PredictionResult {
	var total float64
	for i := 1; i <= months; i++ {
		years := float64(i) / 12
		total += a.avg.Savings/math.Pow(1+f.params.InflationRate, years) + a.trend*years
	}
	return f.result(a, model.Medium, months, total)
}

func (f Forecaster) long(a analysis, months int) model.PredictionResult {
	realRate := f.params.NominalGrowthRate - f.params.InflationRate
	g := math.Pow(1+realRate, 1.0/12) - 1

	var total float64
	v := a.avg.Savings
	for i := 1; i <= months; i++ {
		v *= 1 + g
		total += v
	}
	return f.result(a, model.Long, months, total)
}

func (f Forecaster) result(a analysis, period model.Period, months int, amount float64) model.PredictionResult {
	amount = finiteNonNegative(amount)
	return model.PredictionResult{
		Period:          period,
		Months:          months,
		PredictedAmount: amount,
		Confidence:      Confidence(f.params, period, months, a.count, a.series),
		Factors:         Factors(period),
	}
}

// finiteNonNegative floors negative and non-finite amounts at 0 so results
// always encode as JSON numbers.
func finiteNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
