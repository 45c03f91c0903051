package calculator

import (
	"errors"

	"ValueZone/internal/model"
)

// DefaultWindow is the number of weekly closes in the long-horizon baseline.
const DefaultWindow = 200

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// ComputeBaseline returns the trailing moving average of the series closes,
// aligned index-for-index with series.Points. Points before the first full
// window are marked undefined.
func ComputeBaseline(series *model.PriceSeries, window int) model.Baseline {
	b := model.Baseline{Window: window}
	if series == nil {
		return b
	}
	closes := series.Closes()
	b.Values = make([]model.BaselineValue, len(closes))
	for i, p := range series.Points {
		b.Values[i].Time = p.Time
		if window <= 0 || i < window-1 {
			continue
		}
		ma, err := CalculateSMA(closes[:i+1], window)
		if err != nil {
			continue
		}
		b.Values[i].Value = ma
		b.Values[i].Defined = true
	}
	return b
}

// LatestBaseline returns the most recent defined baseline value of the series.
func LatestBaseline(series *model.PriceSeries, window int) (float64, error) {
	latest, ok := ComputeBaseline(series, window).Latest()
	if !ok {
		return 0, insufficient(series, window)
	}
	return latest, nil
}

func insufficient(series *model.PriceSeries, window int) *model.InsufficientDataError {
	e := &model.InsufficientDataError{Need: window}
	if series != nil {
		e.Symbol = series.Symbol
		e.Have = series.Len()
	}
	return e
}
