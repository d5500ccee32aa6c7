package forecast

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/savecast/internal/model"
)

type monthStats struct {
	sum   decimal.Decimal
	sumSq decimal.Decimal
	count int64
}

// Seasonality returns a strength per calendar month (index 0 = January).
//
// Each transaction contributes its signed amount to the month of its date,
// regardless of year. A month's strength is the distance of its mean from the
// mean of all observed monthly means, in units of that month's population
// standard deviation. Unobserved months and months with zero spread are 0.
func Seasonality(txs []model.Transaction) [12]float64 {
	var stats [12]monthStats
	for _, t := range txs {
		m := int(t.Date.Month()) - 1
		v := t.Signed()
		stats[m].sum = stats[m].sum.Add(v)
		stats[m].sumSq = stats[m].sumSq.Add(v.Mul(v))
		stats[m].count++
	}

	var means, stddevs [12]float64
	var meanSum float64
	observed := 0
	for m := range stats {
		s := stats[m]
		if s.count == 0 {
			continue
		}
		n := decimal.NewFromInt(s.count)
		// n*Σx² − (Σx)² is exact and non-negative.
		num := n.Mul(s.sumSq).Sub(s.sum.Mul(s.sum))
		variance := num.InexactFloat64() / float64(s.count*s.count)
		if variance < 0 {
			variance = 0
		}
		means[m] = s.sum.InexactFloat64() / float64(s.count)
		stddevs[m] = math.Sqrt(variance)
		meanSum += means[m]
		observed++
	}

	var strength [12]float64
	if observed == 0 {
		return strength
	}
	overall := meanSum / float64(observed)
	for m := range stats {
		if stats[m].count == 0 || stddevs[m] == 0 {
			continue
		}
		strength[m] = (means[m] - overall) / stddevs[m]
	}
	return strength
}

// SeasonalAdjustment sums the damped seasonal effect over a horizon starting
// at the zero-based calendar month startMonth.
func SeasonalAdjustment(strength [12]float64, avgSavings float64, startMonth, months int, damping float64) float64 {
	var total float64
	for off := 0; off < months; off++ {
		idx := ((startMonth+off)%12 + 12) % 12
		total += strength[idx] * avgSavings * damping
	}
	return total
}
