package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ValueZone/internal/model"
)

// VsTraderFetcher implements Fetcher using the vstrader REST API.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *VsTraderFetcher {
	return &VsTraderFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

// vsBar is the expected JSON shape from the vstrader API.
type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}

// FetchSeries supports weekly ("1wk") and daily ("1d") intervals. When the
// weekly endpoint fails, daily bars are fetched and aggregated into ISO weeks.
func (f *VsTraderFetcher) FetchSeries(ctx context.Context, symbol, period, interval string) ([]model.PricePoint, error) {
	weeks, err := PeriodWeeks(period)
	if err != nil {
		return nil, err
	}
	switch interval {
	case "1d":
		return f.fetchBars(ctx, "daily", symbol, weeks*7)
	case "1wk":
	default:
		return nil, fmt.Errorf("vstrader: unsupported interval %q", interval)
	}

	bars, err := f.fetchBars(ctx, "weekly", symbol, weeks)
	if err != nil {
		daily, dailyErr := f.fetchBars(ctx, "daily", symbol, weeks*7)
		if dailyErr != nil {
			return nil, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
		}
		return aggregateDailyToWeekly(daily), nil
	}
	return bars, nil
}

func (f *VsTraderFetcher) fetchBars(ctx context.Context, resolution, symbol string, limit int) ([]model.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/%s?symbol=%s&limit=%d", f.BaseURL, resolution, url.QueryEscape(symbol), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, truncate(body, 256))
	}
	var vsBars []vsBar
	if err := json.NewDecoder(resp.Body).Decode(&vsBars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	points := make([]model.PricePoint, len(vsBars))
	for i, vb := range vsBars {
		points[i] = model.PricePoint{Time: time.Unix(vb.Timestamp, 0).UTC(), Close: vb.Close}
	}
	return normalize(points), nil
}

// aggregateDailyToWeekly collapses daily closes into one point per ISO week,
// stamped with the week's first trading day and carrying its last close.
func aggregateDailyToWeekly(daily []model.PricePoint) []model.PricePoint {
	var weekly []model.PricePoint
	lastKey := -1
	for _, d := range daily {
		year, isoWeek := d.Time.ISOWeek()
		key := year*100 + isoWeek
		if key != lastKey {
			weekly = append(weekly, d)
			lastKey = key
			continue
		}
		weekly[len(weekly)-1].Close = d.Close
	}
	return weekly
}
