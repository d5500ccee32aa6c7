// Package forecast projects future net savings from a transaction ledger.
//
// Every entry point is a pure function of its inputs: results are recomputed
// on each call and nothing is cached between calls.
package forecast

import "time"

// Params holds the economic assumptions and scoring weights used by the
// forecaster.
type Params struct {
	// InflationRate is the annual rate used to discount medium-horizon savings.
	InflationRate float64
	// NominalGrowthRate is the annual return before inflation for long horizons.
	NominalGrowthRate float64
	// SeasonalDamping scales seasonal strength into currency units.
	SeasonalDamping float64
	// VolumeSaturation is the transaction count at which the volume term of
	// the confidence score reaches 1.
	VolumeSaturation float64

	ShortCeiling  int
	MediumCeiling int
	LongCeiling   int

	VolumeWeight      float64
	HorizonWeight     float64
	ConsistencyWeight float64

	// AsOf fixes the current calendar month for seasonal adjustment.
	// Zero means time.Now().
	AsOf time.Time
}

// DefaultParams returns the standard assumptions.
func DefaultParams() Params {
	return Params{
		InflationRate:     0.02,
		NominalGrowthRate: 0.05,
		SeasonalDamping:   0.10,
		VolumeSaturation:  100,
		ShortCeiling:      12,
		MediumCeiling:     60,
		LongCeiling:       120,
		VolumeWeight:      0.3,
		HorizonWeight:     0.4,
		ConsistencyWeight: 0.3,
	}
}

// Horizons is the number of months projected for each period.
type Horizons struct {
	Short  int `json:"short"`
	Medium int `json:"medium"`
	Long   int `json:"long"`
}

// DefaultHorizons returns 1, 3 and 10 year horizons.
func DefaultHorizons() Horizons {
	return Horizons{Short: 12, Medium: 36, Long: 120}
}

// withDefaults replaces unusable zero values with the standard ones.
// Rates are left alone since zero is a meaningful rate.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.VolumeSaturation <= 0 {
		p.VolumeSaturation = d.VolumeSaturation
	}
	if p.ShortCeiling <= 0 {
		p.ShortCeiling = d.ShortCeiling
	}
	if p.MediumCeiling <= 0 {
		p.MediumCeiling = d.MediumCeiling
	}
	if p.LongCeiling <= 0 {
		p.LongCeiling = d.LongCeiling
	}
	if p.VolumeWeight == 0 && p.HorizonWeight == 0 && p.ConsistencyWeight == 0 {
		p.VolumeWeight = d.VolumeWeight
		p.HorizonWeight = d.HorizonWeight
		p.ConsistencyWeight = d.ConsistencyWeight
	}
	return p
}

// currentMonth returns the zero-based calendar month of AsOf (or now).
func (p Params) currentMonth() int {
	t := p.AsOf
	if t.IsZero() {
		t = time.Now()
	}
	return int(t.Month()) - 1
}
