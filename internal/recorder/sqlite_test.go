package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueZone/internal/model"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestNewSQLiteRecorder_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "valuezone.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	at := time.Date(2026, 3, 6, 22, 0, 0, 0, time.UTC)
	require.NoError(t, r.RecordAnalysis(ctx, analysisAt("d1", "SPY", model.ZoneCheap, 45, at)))
	hist, err := r.History(ctx, "SPY", 1)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "d1", hist[0].ID)
}

func analysisAt(id, symbol string, z model.Zone, price float64, at time.Time) *model.Analysis {
	return &model.Analysis{
		ID:             id,
		Symbol:         symbol,
		LatestBaseline: 50,
		Window:         200,
		Assignment:     model.ZoneAssignment{Price: price, Zone: z},
		Indicators:     model.Indicators{DeviationPct: (price - 50) / 50 * 100, WeeklyRSI: 55},
		AnalyzedAt:     at,
	}
}

func TestSQLiteRecorder_History(t *testing.T) {
	r := newTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 22, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordAnalysis(ctx, analysisAt("a1", "AAPL", model.ZoneFairValue, 60, base)))
	require.NoError(t, r.RecordAnalysis(ctx, analysisAt("a2", "AAPL", model.ZoneExpensive, 80, base.Add(7*24*time.Hour))))
	require.NoError(t, r.RecordAnalysis(ctx, analysisAt("m1", "MSFT", model.ZoneCheap, 40, base)))

	hist, err := r.History(ctx, "AAPL", 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "a2", hist[0].ID)
	assert.Equal(t, model.ZoneExpensive, hist[0].Zone)
	assert.Equal(t, 80.0, hist[0].Price)
	assert.Equal(t, 200, hist[0].Window)
	assert.True(t, hist[0].AnalyzedAt.Equal(base.Add(7*24*time.Hour)))
	assert.Equal(t, "a1", hist[1].ID)

	hist, err = r.History(ctx, "AAPL", 1)
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	hist, err = r.History(ctx, "NVDA", 10)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestSQLiteRecorder_Transitions(t *testing.T) {
	r := newTestRecorder(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 6, 22, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordTransition(ctx, &model.ZoneTransition{
		Symbol: "SPY", From: model.ZoneFairValue, To: model.ZoneCheap, Price: 410, At: at,
	}))

	got, err := r.Transitions(ctx, "SPY", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.ZoneFairValue, got[0].From)
	assert.Equal(t, model.ZoneCheap, got[0].To)
	assert.Equal(t, 410.0, got[0].Price)
	assert.True(t, got[0].At.Equal(at))
}

func TestSQLiteRecorder_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordAnalysis(context.Background(),
		analysisAt("x", "QQQ", model.ZoneCheap, 300, time.Unix(1700000000, 0))))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	hist, err := r.History(context.Background(), "QQQ", 10)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordAnalysis(context.Background(), &model.Analysis{}))
	hist, err := r.History(context.Background(), "X", 1)
	assert.NoError(t, err)
	assert.Nil(t, hist)
	assert.NoError(t, r.Close())
}
