package collector

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"ValueZone/internal/model"
)

// Fetcher defines the interface for fetching periodic close series.
// An unknown symbol yields an empty slice and a nil error; errors are
// reserved for transport and provider failures.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol, period, interval string) ([]model.PricePoint, error)
	Name() string
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// normalize sorts points chronologically, drops NaN and infinite closes and
// keeps the last observation for any repeated timestamp. Zero and negative
// closes are kept.
func normalize(points []model.PricePoint) []model.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	out := points[:0]
	for _, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
