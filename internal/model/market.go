package model

import "time"

// PricePoint is a single periodic close observation.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// PriceSeries holds an ordered close series for one instrument.
// Points are sorted by Time with no duplicate timestamps.
type PriceSeries struct {
	Symbol    string       `json:"symbol"`
	Interval  string       `json:"interval"`
	Period    string       `json:"period"`
	Points    []PricePoint `json:"points"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return len(s.Points) }

// Closes extracts the close prices in series order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Last returns the most recent observation. The series must not be empty.
func (s *PriceSeries) Last() PricePoint {
	return s.Points[len(s.Points)-1]
}

// BaselineValue is one point of a moving-average baseline. Defined is false
// until enough preceding observations exist; Value is meaningless then.
type BaselineValue struct {
	Time    time.Time `json:"time"`
	Value   float64   `json:"value"`
	Defined bool      `json:"defined"`
}

// Baseline is a trailing moving average aligned 1:1 with its PriceSeries.
type Baseline struct {
	Window int             `json:"window"`
	Values []BaselineValue `json:"values"`
}

// Latest returns the final baseline value and whether it is defined.
func (b Baseline) Latest() (float64, bool) {
	if len(b.Values) == 0 {
		return 0, false
	}
	last := b.Values[len(b.Values)-1]
	return last.Value, last.Defined
}

// DefinedCount returns how many points carry a defined value.
func (b Baseline) DefinedCount() int {
	n := 0
	for _, v := range b.Values {
		if v.Defined {
			n++
		}
	}
	return n
}
