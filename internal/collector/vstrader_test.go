package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueZone/internal/model"
)

func TestVsTraderFetcher_WeeklyFallsBackToDaily(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/api/v1/bars/weekly":
			http.Error(w, "not supported", http.StatusBadRequest)
		case "/api/v1/bars/daily":
			assert.Equal(t, "3640", r.URL.Query().Get("limit"))
			// Mon 2024-01-01 .. Wed 2024-01-10 spans two ISO weeks.
			_, _ = w.Write([]byte(`[
				{"timestamp":1704067200,"close":10},
				{"timestamp":1704153600,"close":11},
				{"timestamp":1704240000,"close":12},
				{"timestamp":1704672000,"close":20},
				{"timestamp":1704844800,"close":22}]`))
		}
	}))
	defer srv.Close()

	f := NewVsTraderFetcher(srv.URL, "secret", "", time.Second)
	pts, err := f.FetchSeries(context.Background(), "SPX500", "10y", "1wk")
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, 12.0, pts[0].Close)
	assert.Equal(t, 22.0, pts[1].Close)
	assert.Equal(t, "Bearer secret", auth)
}

func TestVsTraderFetcher_UnsupportedInterval(t *testing.T) {
	f := NewVsTraderFetcher("http://127.0.0.1:0", "", "", time.Second)
	_, err := f.FetchSeries(context.Background(), "X", "1y", "1h")
	assert.Error(t, err)
}

func TestAggregateDailyToWeekly(t *testing.T) {
	mon := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	daily := []model.PricePoint{
		{Time: mon, Close: 1},
		{Time: mon.AddDate(0, 0, 4), Close: 2},
		{Time: mon.AddDate(0, 0, 7), Close: 3},
	}
	weekly := aggregateDailyToWeekly(daily)
	require.Len(t, weekly, 2)
	assert.Equal(t, mon, weekly[0].Time)
	assert.Equal(t, 2.0, weekly[0].Close)
	assert.Equal(t, 3.0, weekly[1].Close)
	assert.Nil(t, aggregateDailyToWeekly(nil))
}
