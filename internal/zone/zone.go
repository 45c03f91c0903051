// Package zone partitions the price axis into valuation bands around a
// moving-average baseline and classifies prices into them.
package zone

import (
	"fmt"
	"math"

	"ValueZone/internal/model"
)

// Policy holds the baseline multipliers that separate adjacent bands.
// Multipliers[i] is the upper bound of Zones[i] and the lower bound of Zones[i+1].
type Policy struct {
	Multipliers [4]float64 `yaml:"multipliers" json:"multipliers"`
}

// DefaultPolicy returns the 1.0 / 1.5 / 2.0 / 2.5 multiplier table.
func DefaultPolicy() Policy {
	return Policy{Multipliers: [4]float64{1.0, 1.5, 2.0, 2.5}}
}

// Validate checks that the multipliers are positive, finite and strictly increasing.
func (p Policy) Validate() error {
	prev := 0.0
	for i, m := range p.Multipliers {
		if math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
			return fmt.Errorf("multiplier %d (%g) must be positive and finite", i, m)
		}
		if m <= prev {
			return fmt.Errorf("multiplier %d (%g) must be greater than %g", i, m, prev)
		}
		prev = m
	}
	return nil
}

// ComputeZones builds the five bands from the latest baseline value, ordered
// cheapest first. The bands partition [0, +Inf) exactly.
func (p Policy) ComputeZones(latestBaseline float64) ([]model.ValuationBand, error) {
	if math.IsNaN(latestBaseline) || math.IsInf(latestBaseline, 0) || latestBaseline <= 0 {
		return nil, &model.InvalidBaselineError{Value: latestBaseline}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("zone policy: %w", err)
	}

	bands := make([]model.ValuationBand, len(model.Zones))
	lower := 0.0
	for i, name := range model.Zones {
		upper := math.Inf(1)
		if i < len(p.Multipliers) {
			upper = latestBaseline * p.Multipliers[i]
			if math.IsInf(upper, 0) {
				return nil, &model.InvalidBaselineError{Value: latestBaseline}
			}
		}
		bands[i] = model.ValuationBand{Name: name, Lower: lower, Upper: upper}
		lower = upper
	}
	return bands, nil
}

// ComputeZones builds bands with the default policy.
func ComputeZones(latestBaseline float64) ([]model.ValuationBand, error) {
	return DefaultPolicy().ComputeZones(latestBaseline)
}

// Classify returns the first band, in the given order, whose [Lower, Upper)
// interval holds price. Prices outside every band fall back to very_expensive.
func Classify(price float64, bands []model.ValuationBand) model.Zone {
	for _, b := range bands {
		if b.Contains(price) {
			return b.Name
		}
	}
	return model.ZoneVeryExpensive
}

// Assign classifies price and pairs it with the resulting zone.
func Assign(price float64, bands []model.ValuationBand) model.ZoneAssignment {
	return model.ZoneAssignment{Price: price, Zone: Classify(price, bands)}
}
