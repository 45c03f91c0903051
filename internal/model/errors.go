package model

import "fmt"

// NoDataError means the provider returned an empty series for the symbol.
type NoDataError struct {
	Symbol string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data found for ticker %s, please check if the ticker is correct", e.Symbol)
}

// FetchError wraps a transport or provider failure.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch data for ticker %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// InsufficientDataError means the series is shorter than the baseline window.
type InsufficientDataError struct {
	Symbol string
	Have   int
	Need   int
}

func (e *InsufficientDataError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("insufficient data: have %d points, need %d", e.Have, e.Need)
	}
	return fmt.Sprintf("insufficient data for %s: have %d points, need %d", e.Symbol, e.Have, e.Need)
}

// InvalidBaselineError means the baseline is not a positive finite number,
// or is too large for its band bounds to stay finite.
type InvalidBaselineError struct {
	Value float64
}

func (e *InvalidBaselineError) Error() string {
	return fmt.Sprintf("invalid baseline %g: must be positive and finite", e.Value)
}
