package recorder

import (
	"context"
	"time"

	"ValueZone/internal/model"
)

// DefaultHistoryLimit bounds History when the caller passes limit <= 0.
const DefaultHistoryLimit = 52

// Snapshot is the flattened, persisted form of one valuation.
type Snapshot struct {
	ID           string     `json:"id"`
	Symbol       string     `json:"symbol"`
	Price        float64    `json:"price"`
	Baseline     float64    `json:"baseline"`
	Window       int        `json:"window"`
	Zone         model.Zone `json:"zone"`
	DeviationPct float64    `json:"deviation_pct"`
	WeeklyRSI    float64    `json:"weekly_rsi"`
	AnalyzedAt   time.Time  `json:"analyzed_at"`
}

// SnapshotOf flattens an analysis for storage.
func SnapshotOf(a *model.Analysis) Snapshot {
	return Snapshot{
		ID:           a.ID,
		Symbol:       a.Symbol,
		Price:        a.Assignment.Price,
		Baseline:     a.LatestBaseline,
		Window:       a.Window,
		Zone:         a.Assignment.Zone,
		DeviationPct: a.Indicators.DeviationPct,
		WeeklyRSI:    a.Indicators.WeeklyRSI,
		AnalyzedAt:   a.AnalyzedAt,
	}
}

// Recorder persists valuation history.
type Recorder interface {
	RecordAnalysis(ctx context.Context, a *model.Analysis) error
	RecordTransition(ctx context.Context, t *model.ZoneTransition) error
	// History returns the most recent snapshots for symbol, newest first.
	History(ctx context.Context, symbol string, limit int) ([]Snapshot, error)
	Close() error
}

func historyLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}

var (
	_ Recorder = (*NoopRecorder)(nil)
	_ Recorder = (*SQLiteRecorder)(nil)
	_ Recorder = (*PostgresRecorder)(nil)
)
