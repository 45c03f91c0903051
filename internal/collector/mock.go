package collector

import (
	"context"
	"sync"
	"time"

	"ValueZone/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// PerPeriod takes precedence over Points; Errs injects failures per period.
type MockFetcher struct {
	Price     float64
	Points    []model.PricePoint
	PerPeriod map[string][]model.PricePoint
	Errs      map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, _ string, period, _ string) ([]model.PricePoint, error) {
	m.mu.Lock()
	m.calls = append(m.calls, period)
	m.mu.Unlock()

	if err := m.Errs[period]; err != nil {
		return nil, err
	}
	if pts, ok := m.PerPeriod[period]; ok {
		return append([]model.PricePoint(nil), pts...), nil
	}
	if m.Points != nil {
		return append([]model.PricePoint(nil), m.Points...), nil
	}
	weeks, err := PeriodWeeks(period)
	if err != nil {
		return nil, err
	}
	return generateMockSeries(m.Price, weeks), nil
}

// Calls returns the periods requested so far, in order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// generateMockSeries produces a gently trending weekly series ending at basePrice.
func generateMockSeries(basePrice float64, count int) []model.PricePoint {
	if basePrice <= 0 || count <= 0 {
		return nil
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count+1)*0.002)
		if p <= 0 {
			p = basePrice * 0.01
		}
		points[i] = model.PricePoint{
			Time:  end.AddDate(0, 0, -7*(count-1-i)),
			Close: p,
		}
	}
	return points
}
