// Package valuation runs the fetch -> baseline -> zones -> classify pipeline.
package valuation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ValueZone/internal/calculator"
	"ValueZone/internal/model"
	"ValueZone/internal/zone"
)

// SeriesSource supplies price series; *collector.Collector satisfies it.
type SeriesSource interface {
	Collect(ctx context.Context, symbol string) (*model.PriceSeries, error)
}

// Observer is notified after each analysis attempt.
type Observer interface {
	ObserveAnalysis(symbol string, zone model.Zone, err error, elapsed time.Duration)
}

// Service computes valuations for symbols.
type Service struct {
	Source   SeriesSource
	Window   int
	Policy   zone.Policy
	Observer Observer
	Now      func() time.Time
}

// NewService creates a Service with the given window and zone policy.
func NewService(src SeriesSource, window int, policy zone.Policy) *Service {
	return &Service{Source: src, Window: window, Policy: policy, Now: time.Now}
}

// Analyze fetches the series for symbol and classifies its latest close.
func (s *Service) Analyze(ctx context.Context, symbol string) (*model.Analysis, error) {
	start := time.Now()
	series, err := s.Source.Collect(ctx, symbol)
	if err != nil {
		s.observe(symbol, "", err, start)
		return nil, err
	}
	a, err := Evaluate(series, s.Window, s.Policy)
	if err != nil {
		s.observe(series.Symbol, "", err, start)
		return nil, err
	}
	a.ID = uuid.NewString()
	a.AnalyzedAt = s.now()
	s.observe(a.Symbol, a.Assignment.Zone, nil, start)

	log.Info().
		Str("symbol", a.Symbol).
		Float64("price", a.Assignment.Price).
		Float64("baseline", a.LatestBaseline).
		Str("zone", string(a.Assignment.Zone)).
		Msg("valuation computed")
	return a, nil
}

// Evaluate runs the pure part of the pipeline on an already fetched series.
func Evaluate(series *model.PriceSeries, window int, policy zone.Policy) (*model.Analysis, error) {
	if series == nil || series.Len() == 0 {
		sym := ""
		if series != nil {
			sym = series.Symbol
		}
		return nil, &model.NoDataError{Symbol: sym}
	}

	baseline := calculator.ComputeBaseline(series, window)
	latest, ok := baseline.Latest()
	if !ok {
		return nil, &model.InsufficientDataError{Symbol: series.Symbol, Have: series.Len(), Need: window}
	}
	bands, err := policy.ComputeZones(latest)
	if err != nil {
		return nil, err
	}

	price := series.Last().Close
	return &model.Analysis{
		Symbol:         series.Symbol,
		Series:         series,
		Baseline:       baseline,
		LatestBaseline: latest,
		Window:         window,
		Bands:          bands,
		Assignment:     zone.Assign(price, bands),
		Indicators:     indicators(series, price, latest),
	}, nil
}

func indicators(series *model.PriceSeries, price, baseline float64) model.Indicators {
	closes := series.Closes()
	ind := model.Indicators{DeviationPct: calculator.DeviationPct(price, baseline)}

	if h, l, err := calculator.Calculate52WeekRange(closes); err == nil {
		ind.High52w, ind.Low52w = h, l
		if pos, err := calculator.Calculate52WeekPosition(price, h, l); err == nil {
			ind.Position52w = pos
		}
	}
	if rsi, err := calculator.CalculateRSI(closes, 14); err == nil {
		ind.WeeklyRSI = rsi
	}
	return ind
}

func (s *Service) observe(symbol string, z model.Zone, err error, start time.Time) {
	if s.Observer != nil {
		s.Observer.ObserveAnalysis(symbol, z, err, time.Since(start))
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
