package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"ValueZone/internal/model"
)

// SQLiteRecorder persists valuation history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
// Missing parent directories are created.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id            TEXT PRIMARY KEY,
			symbol        TEXT NOT NULL,
			timestamp     INTEGER NOT NULL,
			price         REAL,
			baseline      REAL,
			window_weeks  INTEGER,
			zone          TEXT,
			deviation_pct REAL,
			weekly_rsi    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON analyses(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS zone_transitions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol    TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			from_zone TEXT,
			to_zone   TEXT,
			price     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_symbol_ts ON zone_transitions(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(ctx context.Context, a *model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := SnapshotOf(a)
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO analyses
		(id, symbol, timestamp, price, baseline, window_weeks, zone, deviation_pct, weekly_rsi)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		s.ID, s.Symbol, s.AnalyzedAt.Unix(), s.Price, s.Baseline, s.Window,
		string(s.Zone), s.DeviationPct, s.WeeklyRSI,
	)
	return err
}

func (r *SQLiteRecorder) RecordTransition(ctx context.Context, t *model.ZoneTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO zone_transitions
		(symbol, timestamp, from_zone, to_zone, price)
		VALUES (?,?,?,?,?)`,
		t.Symbol, t.At.Unix(), string(t.From), string(t.To), t.Price,
	)
	return err
}

func (r *SQLiteRecorder) History(ctx context.Context, symbol string, limit int) ([]Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT id, symbol, timestamp, price, baseline,
		window_weeks, zone, deviation_pct, weekly_rsi
		FROM analyses WHERE symbol = ?
		ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		symbol, historyLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			s    Snapshot
			ts   int64
			zone string
		)
		if err := rows.Scan(&s.ID, &s.Symbol, &ts, &s.Price, &s.Baseline,
			&s.Window, &zone, &s.DeviationPct, &s.WeeklyRSI); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		s.Zone = model.Zone(zone)
		s.AnalyzedAt = time.Unix(ts, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// Transitions returns the recorded zone changes for symbol, newest first.
func (r *SQLiteRecorder) Transitions(ctx context.Context, symbol string, limit int) ([]model.ZoneTransition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT symbol, timestamp, from_zone, to_zone, price
		FROM zone_transitions WHERE symbol = ?
		ORDER BY timestamp DESC, id DESC LIMIT ?`,
		symbol, historyLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []model.ZoneTransition
	for rows.Next() {
		var (
			t        model.ZoneTransition
			ts       int64
			from, to string
		)
		if err := rows.Scan(&t.Symbol, &ts, &from, &to, &t.Price); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.From, t.To = model.Zone(from), model.Zone(to)
		t.At = time.Unix(ts, 0).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
