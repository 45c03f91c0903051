package model

import (
	"encoding/json"
	"math"
)

// Zone names one of the five valuation bands.
type Zone string

const (
	ZoneVeryCheap     Zone = "very_cheap"
	ZoneCheap         Zone = "cheap"
	ZoneFairValue     Zone = "fair_value"
	ZoneExpensive     Zone = "expensive"
	ZoneVeryExpensive Zone = "very_expensive"
)

// Zones lists every zone from cheapest to most expensive.
var Zones = []Zone{ZoneVeryCheap, ZoneCheap, ZoneFairValue, ZoneExpensive, ZoneVeryExpensive}

// Rank returns the zone's position in Zones, or -1 for an unknown name.
func (z Zone) Rank() int {
	for i, known := range Zones {
		if known == z {
			return i
		}
	}
	return -1
}

// Valid reports whether z is one of the five known zones.
func (z Zone) Valid() bool { return z.Rank() >= 0 }

// ValuationBand is a half-open price interval [Lower, Upper).
// Upper is +Inf for the most expensive band.
type ValuationBand struct {
	Name  Zone    `json:"name"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether Lower <= price < Upper.
func (b ValuationBand) Contains(price float64) bool {
	return b.Lower <= price && price < b.Upper
}

// Unbounded reports whether the band extends to +Inf.
func (b ValuationBand) Unbounded() bool { return math.IsInf(b.Upper, 1) }

// MarshalJSON encodes an infinite upper bound as null.
func (b ValuationBand) MarshalJSON() ([]byte, error) {
	var upper *float64
	if !b.Unbounded() {
		u := b.Upper
		upper = &u
	}
	return json.Marshal(struct {
		Name  Zone     `json:"name"`
		Lower float64  `json:"lower"`
		Upper *float64 `json:"upper"`
	}{b.Name, b.Lower, upper})
}

// ZoneAssignment is the result of classifying a price.
type ZoneAssignment struct {
	Price float64 `json:"price"`
	Zone  Zone    `json:"zone"`
}
