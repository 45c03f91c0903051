package valuation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueZone/internal/collector"
	"ValueZone/internal/model"
	"ValueZone/internal/zone"
)

// meanFiftyEndingAtHundred builds 200 weekly closes whose mean is exactly 50
// and whose final close is 100.
func meanFiftyEndingAtHundred() []model.PricePoint {
	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, 0, 200)
	add := func(c float64) {
		pts = append(pts, model.PricePoint{Time: start.AddDate(0, 0, 7*len(pts)), Close: c})
	}
	for i := 0; i < 50; i++ {
		add(49)
	}
	for i := 0; i < 149; i++ {
		add(50)
	}
	add(100)
	return pts
}

type recordingObserver struct {
	zones []model.Zone
	errs  []error
}

func (r *recordingObserver) ObserveAnalysis(_ string, z model.Zone, err error, _ time.Duration) {
	r.zones = append(r.zones, z)
	r.errs = append(r.errs, err)
}

func newService(f collector.Fetcher) *Service {
	c := collector.NewCollector(f, "10y", "5y", "1wk")
	return NewService(c, 200, zone.DefaultPolicy())
}

func TestAnalyze_EndToEnd(t *testing.T) {
	obs := &recordingObserver{}
	svc := newService(&collector.MockFetcher{Points: meanFiftyEndingAtHundred()})
	svc.Observer = obs
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return fixed }

	a, err := svc.Analyze(context.Background(), "test")
	require.NoError(t, err)

	assert.Equal(t, "TEST", a.Symbol)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, fixed, a.AnalyzedAt)
	assert.Equal(t, 50.0, a.LatestBaseline)
	assert.Equal(t, 200, a.Window)
	assert.Equal(t, model.ZoneAssignment{Price: 100, Zone: model.ZoneExpensive}, a.Assignment)

	wantBounds := [][2]float64{{0, 50}, {50, 75}, {75, 100}, {100, 125}}
	for i, w := range wantBounds {
		assert.Equal(t, w[0], a.Bands[i].Lower)
		assert.Equal(t, w[1], a.Bands[i].Upper)
	}
	assert.Equal(t, 125.0, a.Bands[4].Lower)
	assert.True(t, a.Bands[4].Unbounded())

	assert.Equal(t, 100.0, a.Indicators.DeviationPct)
	assert.Equal(t, 100.0, a.Indicators.High52w)
	assert.Equal(t, 50.0, a.Indicators.Low52w)
	assert.Equal(t, 1.0, a.Indicators.Position52w)

	require.Len(t, obs.zones, 1)
	assert.Equal(t, model.ZoneExpensive, obs.zones[0])
	assert.NoError(t, obs.errs[0])
}

func TestAnalyze_InsufficientData(t *testing.T) {
	obs := &recordingObserver{}
	svc := newService(&collector.MockFetcher{Points: meanFiftyEndingAtHundred()[:150]})
	svc.Observer = obs

	_, err := svc.Analyze(context.Background(), "short")
	var insufficient *model.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "SHORT", insufficient.Symbol)
	assert.Equal(t, 150, insufficient.Have)
	assert.Equal(t, 200, insufficient.Need)
	require.Len(t, obs.errs, 1)
	assert.Error(t, obs.errs[0])
}

func TestAnalyze_PropagatesProviderErrors(t *testing.T) {
	svc := newService(&collector.MockFetcher{Errs: map[string]error{
		"10y": errors.New("dial tcp: refused"),
		"5y":  errors.New("dial tcp: refused"),
	}})
	_, err := svc.Analyze(context.Background(), "AAPL")
	var fetchErr *model.FetchError
	assert.ErrorAs(t, err, &fetchErr)

	svc = newService(&collector.MockFetcher{PerPeriod: map[string][]model.PricePoint{"10y": nil, "5y": nil}})
	_, err = svc.Analyze(context.Background(), "AAPL")
	var noData *model.NoDataError
	assert.ErrorAs(t, err, &noData)
}

func TestEvaluate_ZeroBaselineIsInvalid(t *testing.T) {
	series := &model.PriceSeries{Symbol: "ZERO"}
	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		series.Points = append(series.Points, model.PricePoint{Time: start.AddDate(0, 0, 7*i), Close: 0})
	}
	_, err := Evaluate(series, 3, zone.DefaultPolicy())
	var invalid *model.InvalidBaselineError
	assert.ErrorAs(t, err, &invalid)
}

func TestAnalyze_ZeroClosesAreInvalidBaseline(t *testing.T) {
	pts := meanFiftyEndingAtHundred()
	for i := range pts {
		pts[i].Close = 0
	}
	_, err := newService(&collector.MockFetcher{Points: pts}).Analyze(context.Background(), "DEAD")
	var invalid *model.InvalidBaselineError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0.0, invalid.Value)
}

func TestEvaluate_Empty(t *testing.T) {
	_, err := Evaluate(&model.PriceSeries{Symbol: "E"}, 3, zone.DefaultPolicy())
	var noData *model.NoDataError
	assert.ErrorAs(t, err, &noData)

	_, err = Evaluate(nil, 3, zone.DefaultPolicy())
	assert.ErrorAs(t, err, &noData)
}

func TestEvaluate_CustomPolicy(t *testing.T) {
	series := &model.PriceSeries{Symbol: "C", Points: meanFiftyEndingAtHundred()}
	a, err := Evaluate(series, 200, zone.Policy{Multipliers: [4]float64{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.Equal(t, model.ZoneFairValue, a.Assignment.Zone)
}
