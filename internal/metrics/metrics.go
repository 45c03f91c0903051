// Package metrics exposes Prometheus instrumentation for analyses, the HTTP
// surface and the watch scheduler.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ValueZone/internal/model"
)

// Registry holds all ValueZone metrics on a private Prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	AnalysisDuration *prometheus.HistogramVec
	Analyses         *prometheus.CounterVec
	AnalysisErrors   *prometheus.CounterVec
	ZoneTransitions  *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	WatchRuns        prometheus.Counter
}

// NewRegistry creates and registers every metric.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valuezone_analysis_duration_seconds",
				Help:    "Duration of a full valuation (fetch, baseline, classify) in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"result"},
		),
		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuezone_analyses_total",
				Help: "Completed valuations by resulting zone",
			},
			[]string{"zone"},
		),
		AnalysisErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuezone_analysis_errors_total",
				Help: "Failed valuations by error kind",
			},
			[]string{"kind"},
		),
		ZoneTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuezone_zone_transitions_total",
				Help: "Zone changes detected by the watch scheduler",
			},
			[]string{"from", "to"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuezone_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valuezone_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		WatchRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "valuezone_watch_runs_total",
				Help: "Watchlist evaluations started",
			},
		),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.AnalysisDuration, r.Analyses, r.AnalysisErrors, r.ZoneTransitions,
		r.HTTPRequests, r.HTTPDuration, r.WatchRuns,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// ObserveAnalysis records the outcome of one valuation.
func (r *Registry) ObserveAnalysis(_ string, zone model.Zone, err error, elapsed time.Duration) {
	if err != nil {
		r.AnalysisDuration.WithLabelValues("error").Observe(elapsed.Seconds())
		r.AnalysisErrors.WithLabelValues(ErrorKind(err)).Inc()
		return
	}
	r.AnalysisDuration.WithLabelValues("ok").Observe(elapsed.Seconds())
	r.Analyses.WithLabelValues(string(zone)).Inc()
}

// ObserveTransition counts a zone change.
func (r *Registry) ObserveTransition(t model.ZoneTransition) {
	r.ZoneTransitions.WithLabelValues(string(t.From), string(t.To)).Inc()
}

// ErrorKind maps domain errors to a low-cardinality label.
func ErrorKind(err error) string {
	var (
		noData       *model.NoDataError
		fetch        *model.FetchError
		insufficient *model.InsufficientDataError
		invalid      *model.InvalidBaselineError
	)
	switch {
	case errors.As(err, &noData):
		return "no_data"
	case errors.As(err, &fetch):
		return "fetch"
	case errors.As(err, &insufficient):
		return "insufficient_data"
	case errors.As(err, &invalid):
		return "invalid_baseline"
	default:
		return "other"
	}
}

// ObserveWatchRun counts a watchlist evaluation.
func (r *Registry) ObserveWatchRun() { r.WatchRuns.Inc() }
