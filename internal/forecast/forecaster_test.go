package forecast

import (
	"encoding/json"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/savecast/internal/model"
)

func tx(t *testing.T, typ model.TxType, amount, date string) model.Transaction {
	t.Helper()
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		t.Fatalf("parse date %q: %v", date, err)
	}
	return model.Transaction{
		ID:       date + amount,
		Type:     typ,
		Amount:   decimal.RequireFromString(amount),
		Category: "test",
		Date:     d,
	}
}

// januaryLedger is a single month: salary 350000, rent 120000, food 75000.
func januaryLedger(t *testing.T) []model.Transaction {
	t.Helper()
	return []model.Transaction{
		tx(t, model.Income, "350000", "2024-01-25"),
		tx(t, model.Expense, "120000", "2024-01-01"),
		tx(t, model.Expense, "75000", "2024-01-15"),
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6*math.Max(1, math.Abs(b))
}

func TestSlope(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{42}, 0},
		{"linear", []float64{100, 200, 300, 400}, 100},
		{"flat", []float64{5, 5, 5}, 0},
		{"falling", []float64{30, 20, 10}, -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slope(tt.values); !approx(got, tt.want) {
				t.Errorf("Slope(%v) = %f, want %f", tt.values, got, tt.want)
			}
		})
	}
}

func TestSeasonality(t *testing.T) {
	txs := []model.Transaction{
		tx(t, model.Income, "100", "2024-01-05"),
		tx(t, model.Income, "300", "2023-01-20"),
		tx(t, model.Expense, "100", "2024-07-05"),
		tx(t, model.Expense, "300", "2024-07-06"),
		// a single record has zero spread
		tx(t, model.Income, "999", "2024-03-01"),
	}

	s := Seasonality(txs)
	if len(s) != 12 {
		t.Fatalf("len = %d, want 12", len(s))
	}

	// Means: Jan 200, Mar 999, Jul -200; overall 333. Stddev 100 for Jan/Jul.
	overall := (200.0 + 999.0 - 200.0) / 3
	if want := (200 - overall) / 100; !approx(s[0], want) {
		t.Errorf("January = %f, want %f", s[0], want)
	}
	if want := (-200 - overall) / 100; !approx(s[6], want) {
		t.Errorf("July = %f, want %f", s[6], want)
	}
	if s[2] != 0 {
		t.Errorf("March (zero stddev) = %f, want 0", s[2])
	}
	for _, m := range []int{1, 3, 4, 5, 7, 8, 9, 10, 11} {
		if s[m] != 0 {
			t.Errorf("month %d unobserved but strength = %f", m+1, s[m])
		}
	}
}

func TestSeasonalityEmpty(t *testing.T) {
	if s := Seasonality(nil); s != [12]float64{} {
		t.Errorf("Seasonality(nil) = %v, want zeros", s)
	}
}

func TestSeasonalAdjustment(t *testing.T) {
	var strength [12]float64
	strength[0] = 2
	strength[6] = -2

	// December then January wraps the year.
	if got := SeasonalAdjustment(strength, 1000, 11, 2, 0.10); !approx(got, 200) {
		t.Errorf("wrap = %f, want 200", got)
	}
	if got := SeasonalAdjustment(strength, 1000, 0, 12, 0.10); !approx(got, 0) {
		t.Errorf("full year = %f, want 0", got)
	}
	if got := SeasonalAdjustment(strength, 1000, 0, 0, 0.10); got != 0 {
		t.Errorf("zero months = %f, want 0", got)
	}
}

func TestConfidenceBounds(t *testing.T) {
	p := DefaultParams()
	series := []float64{1000, -500, 20000, 3}
	for _, period := range model.Periods {
		for _, m := range []int{-5, 0, 1, 12, 60, 120, 1000} {
			for _, n := range []int{0, 1, 50, 5000} {
				c := Confidence(p, period, m, n, series)
				if math.IsNaN(c) || c < 0 || c > 1 {
					t.Fatalf("Confidence(%s, %d, %d) = %f out of [0,1]", period, m, n, c)
				}
			}
		}
	}
}

func TestConfidenceMonotoneInMonths(t *testing.T) {
	p := DefaultParams()
	series := []float64{100, 120, 90, 110}
	for _, period := range model.Periods {
		prev := math.Inf(1)
		for m := 1; m <= 150; m++ {
			c := Confidence(p, period, m, 40, series)
			if c > prev {
				t.Fatalf("%s: confidence rose from %f to %f at %d months", period, prev, c, m)
			}
			prev = c
		}
	}
}

func TestConfidenceComponents(t *testing.T) {
	p := DefaultParams()
	// Perfectly stable series, saturated volume, zero horizon.
	got := Confidence(p, model.Short, 0, 100, []float64{500, 500, 500})
	if !approx(got, 1) {
		t.Errorf("ideal confidence = %f, want 1", got)
	}
	// Zero-mean series contributes no consistency.
	got = Confidence(p, model.Short, 12, 0, []float64{-5, 5})
	if got != 0 {
		t.Errorf("zero-mean confidence = %f, want 0", got)
	}
	// So does a single month.
	got = Confidence(p, model.Short, 12, 0, []float64{500})
	if got != 0 {
		t.Errorf("single-month confidence = %f, want 0", got)
	}
}

func TestEmptyLedger(t *testing.T) {
	f := New(DefaultParams())
	for _, r := range f.Forecast(nil, DefaultHorizons()) {
		if r.PredictedAmount != 0 {
			t.Errorf("%s amount = %f, want 0", r.Period, r.PredictedAmount)
		}
		if r.Confidence < 0 || r.Confidence > 1 || math.IsNaN(r.Confidence) {
			t.Errorf("%s confidence = %f", r.Period, r.Confidence)
		}
		if len(r.Factors) != 3 {
			t.Errorf("%s factors = %d, want 3", r.Period, len(r.Factors))
		}
	}

	s := f.Scenario(nil, model.ExpenseReduction, 10, 12)
	if s.PredictedAmount != 0 || s.Improvement != 0 || s.MonthlyImprovement != 0 {
		t.Errorf("empty scenario = %+v, want zeros", s)
	}
}

func TestResultsStayFinite(t *testing.T) {
	huge := []model.Transaction{
		tx(t, model.Income, "1e400", "2024-01-25"),
		tx(t, model.Expense, "120000", "2024-02-01"),
	}
	badRates := DefaultParams()
	badRates.InflationRate = -1

	tests := []struct {
		name   string
		params Params
		txs    []model.Transaction
	}{
		{"overflowing amount", DefaultParams(), huge},
		{"inflation of -100%", badRates, januaryLedger(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.params)
			for _, r := range f.Forecast(tt.txs, DefaultHorizons()) {
				if math.IsNaN(r.PredictedAmount) || math.IsInf(r.PredictedAmount, 0) || r.PredictedAmount < 0 {
					t.Errorf("%s amount = %v", r.Period, r.PredictedAmount)
				}
				if r.Confidence < 0 || r.Confidence > 1 || math.IsNaN(r.Confidence) {
					t.Errorf("%s confidence = %v", r.Period, r.Confidence)
				}
				if _, err := json.Marshal(r); err != nil {
					t.Errorf("%s: %v", r.Period, err)
				}
			}
			if _, err := json.Marshal(f.Scenario(tt.txs, model.IncomeIncrease, 10, 12)); err != nil {
				t.Errorf("scenario: %v", err)
			}
		})
	}
}

func TestHorizonsSingleMonth(t *testing.T) {
	p := DefaultParams()
	p.AsOf = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	f := New(p)
	txs := januaryLedger(t)

	short := f.Short(txs, 12)
	if !approx(short.PredictedAmount, 155000*12) {
		t.Errorf("short = %f, want %f", short.PredictedAmount, 155000.0*12)
	}
	// volume 3/100 * 0.3, horizon 0, consistency 0
	if !approx(short.Confidence, 0.009) {
		t.Errorf("short confidence = %f, want 0.009", short.Confidence)
	}

	var wantMedium float64
	for i := 1; i <= 24; i++ {
		wantMedium += 155000 / math.Pow(1.02, float64(i)/12)
	}
	if got := f.Medium(txs, 24).PredictedAmount; !approx(got, wantMedium) {
		t.Errorf("medium = %f, want %f", got, wantMedium)
	}

	g := math.Pow(1.03, 1.0/12) - 1
	if got := f.Long(txs, 1).PredictedAmount; !approx(got, 155000*(1+g)) {
		t.Errorf("long(1) = %f, want %f", got, 155000*(1+g))
	}
}

func TestNegativeSavingsFloored(t *testing.T) {
	f := New(DefaultParams())
	txs := []model.Transaction{
		tx(t, model.Income, "1000", "2024-01-10"),
		tx(t, model.Expense, "5000", "2024-01-11"),
	}
	for _, r := range f.Forecast(txs, DefaultHorizons()) {
		if r.PredictedAmount != 0 {
			t.Errorf("%s = %f, want 0", r.Period, r.PredictedAmount)
		}
	}
}

func TestPredict(t *testing.T) {
	f := New(DefaultParams())
	txs := januaryLedger(t)

	for _, period := range model.Periods {
		r, err := f.Predict(txs, period, 24)
		if err != nil {
			t.Fatalf("Predict(%s): %v", period, err)
		}
		if r.Period != period || r.Months != 24 {
			t.Errorf("Predict(%s) = %s/%d", period, r.Period, r.Months)
		}
		if !reflect.DeepEqual(r.Factors, Factors(period)) {
			t.Errorf("factors = %v", r.Factors)
		}
	}

	if _, err := f.Predict(txs, "decade", 24); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestFactors(t *testing.T) {
	want := map[model.Period][]string{
		model.Short:  {"Past spending patterns", "Seasonal factors", "Recurring income"},
		model.Medium: {"Income growth trend", "Inflation rate", "Life events"},
		model.Long:   {"Investment returns", "Long-term economic growth", "Inflation adjustment"},
	}
	for period, labels := range want {
		got := Factors(period)
		if !reflect.DeepEqual(got, labels) {
			t.Errorf("Factors(%s) = %v, want %v", period, got, labels)
		}
		got[0] = "mutated"
		if Factors(period)[0] != labels[0] {
			t.Errorf("Factors(%s) shares its backing array", period)
		}
	}
}

func TestScenario(t *testing.T) {
	txs := januaryLedger(t)

	r := Scenario(txs, model.ExpenseReduction, 10, 12)
	if !approx(r.PredictedAmount, 174500*12) {
		t.Errorf("PredictedAmount = %f, want %f", r.PredictedAmount, 174500.0*12)
	}
	if !approx(r.Improvement, 19500*12) {
		t.Errorf("Improvement = %f, want %f", r.Improvement, 19500.0*12)
	}
	if !approx(r.MonthlyImprovement, 19500) {
		t.Errorf("MonthlyImprovement = %f, want 19500", r.MonthlyImprovement)
	}

	r = Scenario(txs, model.IncomeIncrease, 10, 12)
	if !approx(r.MonthlyImprovement, 35000) {
		t.Errorf("income MonthlyImprovement = %f, want 35000", r.MonthlyImprovement)
	}

	r = Scenario(txs, "lottery", 10, 12)
	if r.Improvement != 0 {
		t.Errorf("unknown kind Improvement = %f, want 0", r.Improvement)
	}

	r = Scenario(txs, model.ExpenseReduction, 10, 0)
	if r.MonthlyImprovement != 0 {
		t.Errorf("zero months MonthlyImprovement = %f, want 0", r.MonthlyImprovement)
	}
}

func TestScenarioMonotoneInPercent(t *testing.T) {
	txs := januaryLedger(t)
	for _, kind := range []model.ScenarioKind{model.ExpenseReduction, model.IncomeIncrease} {
		prev := math.Inf(-1)
		for p := -20.0; p <= 150; p += 5 {
			r := Scenario(txs, kind, p, 12)
			if r.PredictedAmount < prev {
				t.Fatalf("%s: amount fell at %.0f%%", kind, p)
			}
			prev = r.PredictedAmount
		}
	}
}

func TestSweep(t *testing.T) {
	results := Sweep(januaryLedger(t), model.ExpenseReduction, 5, 50, 5, 12)
	if len(results) != 10 {
		t.Fatalf("len = %d, want 10", len(results))
	}
	if results[0].Percentage != 5 || results[9].Percentage != 50 {
		t.Errorf("range = %.0f..%.0f, want 5..50", results[0].Percentage, results[9].Percentage)
	}
	if Sweep(nil, model.ExpenseReduction, 5, 50, 0, 12) != nil {
		t.Error("zero step should yield nil")
	}
}

func TestDeterministicUnderPermutation(t *testing.T) {
	p := DefaultParams()
	p.AsOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := New(p)

	var txs []model.Transaction
	amounts := []string{"0.10", "0.20", "1234.56", "99999.99", "3.33", "7"}
	for i := 0; i < 240; i++ {
		typ := model.Expense
		if i%4 == 0 {
			typ = model.Income
		}
		date := time.Date(2022, time.Month(1+i%12), 1+i%27, 0, 0, 0, 0, time.UTC).AddDate(i/60, 0, 0)
		txs = append(txs, model.Transaction{
			Type:   typ,
			Amount: decimal.RequireFromString(amounts[i%len(amounts)]),
			Date:   date,
		})
	}

	want := f.Forecast(txs, DefaultHorizons())
	wantSeason := f.Seasonality(txs)
	first := txs[0]

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		shuffled := make([]model.Transaction, len(txs))
		copy(shuffled, txs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		if got := f.Forecast(shuffled, DefaultHorizons()); !reflect.DeepEqual(got, want) {
			t.Fatalf("round %d: forecast differs\n got %+v\nwant %+v", round, got, want)
		}
		if got := f.Seasonality(shuffled); got != wantSeason {
			t.Fatalf("round %d: seasonality differs", round)
		}
	}

	if !reflect.DeepEqual(txs[0], first) {
		t.Error("input slice was mutated")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	f := New(Params{InflationRate: 0.04})
	p := f.Params()
	if p.InflationRate != 0.04 {
		t.Errorf("InflationRate = %f, want 0.04", p.InflationRate)
	}
	if p.ShortCeiling != 12 || p.MediumCeiling != 60 || p.LongCeiling != 120 {
		t.Errorf("ceilings = %d/%d/%d", p.ShortCeiling, p.MediumCeiling, p.LongCeiling)
	}
	if p.VolumeSaturation != 100 {
		t.Errorf("VolumeSaturation = %f, want 100", p.VolumeSaturation)
	}
}

func BenchmarkForecast(b *testing.B) {
	var txs []model.Transaction
	for i := 0; i < 5000; i++ {
		typ := model.Expense
		if i%10 == 0 {
			typ = model.Income
		}
		txs = append(txs, model.Transaction{
			Type:   typ,
			Amount: decimal.NewFromInt(int64(1000 + i%700)),
			Date:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i/3),
		})
	}
	f := New(DefaultParams())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Forecast(txs, DefaultHorizons())
	}
}
