package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueZone/internal/model"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&model.NoDataError{Symbol: "X"}, "no_data"},
		{fmt.Errorf("wrapped: %w", &model.FetchError{Symbol: "X", Err: errors.New("x")}), "fetch"},
		{&model.InsufficientDataError{Have: 1, Need: 200}, "insufficient_data"},
		{&model.InvalidBaselineError{Value: 0}, "invalid_baseline"},
		{errors.New("other"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err))
	}
}

func TestObserveAnalysis(t *testing.T) {
	r := NewRegistry()
	r.ObserveAnalysis("AAPL", model.ZoneCheap, nil, 10*time.Millisecond)
	r.ObserveAnalysis("AAPL", model.ZoneCheap, nil, 10*time.Millisecond)
	r.ObserveAnalysis("BAD", "", &model.NoDataError{Symbol: "BAD"}, time.Millisecond)
	r.ObserveTransition(model.ZoneTransition{From: model.ZoneCheap, To: model.ZoneFairValue})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Analyses.WithLabelValues("cheap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.AnalysisErrors.WithLabelValues("no_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ZoneTransitions.WithLabelValues("cheap", "fair_value")))
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.WatchRuns.Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "valuezone_watch_runs_total 1")
}
