package collector

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ValueZone/internal/model"
)

// ErrEmptySymbol is returned when no ticker was supplied.
var ErrEmptySymbol = errors.New("symbol is required")

// Collector fetches a close series, retrying once with a shorter fallback
// period when the primary period fails or comes back empty.
type Collector struct {
	Fetcher        Fetcher
	Period         string
	FallbackPeriod string
	Interval       string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, period, fallbackPeriod, interval string) *Collector {
	return &Collector{
		Fetcher:        fetcher,
		Period:         period,
		FallbackPeriod: fallbackPeriod,
		Interval:       interval,
	}
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Collect returns the series for symbol. Transport failures surface as
// *model.FetchError and empty results as *model.NoDataError.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}

	period := c.Period
	points, err := c.Fetcher.FetchSeries(ctx, symbol, period, c.Interval)
	if (err != nil || len(points) == 0) && c.FallbackPeriod != "" && c.FallbackPeriod != c.Period && ctx.Err() == nil {
		ev := log.Warn().Str("symbol", symbol).Str("period", c.Period).Str("fallback", c.FallbackPeriod)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("primary fetch returned nothing, retrying with fallback period")

		period = c.FallbackPeriod
		points, err = c.Fetcher.FetchSeries(ctx, symbol, period, c.Interval)
	}
	if err != nil {
		return nil, &model.FetchError{Symbol: symbol, Err: err}
	}
	points = normalize(points)
	if len(points) == 0 {
		return nil, &model.NoDataError{Symbol: symbol}
	}

	log.Debug().Str("symbol", symbol).Str("source", c.Fetcher.Name()).Str("period", period).Int("points", len(points)).Msg("series collected")
	return &model.PriceSeries{
		Symbol:    symbol,
		Interval:  c.Interval,
		Period:    period,
		Points:    points,
		FetchedAt: time.Now().UTC(),
	}, nil
}
