package forecast

import (
	"math"

	"github.com/theirongolddev/savecast/internal/model"
)

// ceiling returns the horizon length at which the horizon term reaches 0.
func (p Params) ceiling(period model.Period) int {
	switch period {
	case model.Medium:
		return p.MediumCeiling
	case model.Long:
		return p.LongCeiling
	default:
		return p.ShortCeiling
	}
}

// Confidence scores a prediction in [0, 1] from data volume, horizon length,
// and the stability of the monthly net-savings series.
func Confidence(p Params, period model.Period, months, txCount int, series []float64) float64 {
	p = p.withDefaults()

	volume := math.Min(float64(txCount)/p.VolumeSaturation, 1)
	horizon := math.Max(0, 1-float64(months)/float64(p.ceiling(period)))
	consistency := math.Max(0, 1-coefficientOfVariation(series))

	score := p.VolumeWeight*volume + p.HorizonWeight*horizon + p.ConsistencyWeight*consistency
	return clamp01(score)
}

// coefficientOfVariation returns the population stddev over |mean|. A value
// that cannot be computed is treated as maximally inconsistent.
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 1
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 1
	}

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	cv := math.Sqrt(sq/float64(len(values))) / math.Abs(mean)
	if math.IsNaN(cv) || math.IsInf(cv, 0) {
		return 1
	}
	return cv
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
