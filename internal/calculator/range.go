package calculator

import (
	"errors"
	"math"
)

// WeeksPerYear is the lookback used for 52-week statistics on weekly closes.
const WeeksPerYear = 52

// Calculate52WeekRange scans the most recent 52 weekly closes and returns the high and low.
func Calculate52WeekRange(weeklyCloses []float64) (high, low float64, err error) {
	if len(weeklyCloses) == 0 {
		return 0, 0, errors.New("no weekly closes provided")
	}
	start := len(weeklyCloses) - WeeksPerYear
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, c := range weeklyCloses[start:] {
		high = math.Max(high, c)
		low = math.Min(low, c)
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where the current price sits within the 52-week range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}

// DeviationPct returns how far price sits above (+) or below (-) the baseline, in percent.
func DeviationPct(price, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (price - baseline) / baseline * 100
}
