package model

import "time"

// Indicators are supplementary statistics shown next to the valuation.
type Indicators struct {
	High52w      float64 `json:"high_52w"`
	Low52w       float64 `json:"low_52w"`
	Position52w  float64 `json:"position_52w"` // 0.0 ~ 1.0
	WeeklyRSI    float64 `json:"weekly_rsi"`
	DeviationPct float64 `json:"deviation_pct"` // price vs baseline, percent
}

// Analysis is the full output of one valuation run.
type Analysis struct {
	ID             string          `json:"id"`
	Symbol         string          `json:"symbol"`
	Series         *PriceSeries    `json:"-"`
	Baseline       Baseline        `json:"-"`
	LatestBaseline float64         `json:"baseline"`
	Window         int             `json:"window"`
	Bands          []ValuationBand `json:"bands"`
	Assignment     ZoneAssignment  `json:"assignment"`
	Indicators     Indicators      `json:"indicators"`
	AnalyzedAt     time.Time       `json:"analyzed_at"`
}

// Band returns the band with the given name.
func (a *Analysis) Band(z Zone) (ValuationBand, bool) {
	for _, b := range a.Bands {
		if b.Name == z {
			return b, true
		}
	}
	return ValuationBand{}, false
}

// ZoneTransition records a change of zone between two runs for a symbol.
type ZoneTransition struct {
	Symbol string    `json:"symbol"`
	From   Zone      `json:"from"`
	To     Zone      `json:"to"`
	Price  float64   `json:"price"`
	At     time.Time `json:"at"`
}

// Cheaper reports whether the transition moved toward a cheaper zone.
func (t ZoneTransition) Cheaper() bool { return t.To.Rank() < t.From.Rank() }
