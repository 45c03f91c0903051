package recorder

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"ValueZone/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRecorder persists valuation history to PostgreSQL via pgx.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder connects to dsn, pings, and applies embedded migrations.
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	r := &PostgresRecorder{pool: pool}
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Str("host", poolCfg.ConnConfig.Host).Msg("postgres recorder opened")
	return r, nil
}

func (r *PostgresRecorder) migrate(ctx context.Context) error {
	const createTracker = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`
	if _, err := r.pool.Exec(ctx, createTracker); err != nil {
		return fmt.Errorf("postgres: create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("postgres: read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		var exists bool
		if err := r.pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)", name,
		).Scan(&exists); err != nil {
			return fmt.Errorf("postgres: check migration %s: %w", name, err)
		}
		if exists {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("postgres: read migration %s: %w", name, err)
		}

		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("postgres: begin tx for %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, string(data)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("postgres: exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (filename) VALUES ($1)", name); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("postgres: record migration %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("postgres: commit migration %s: %w", name, err)
		}
	}
	return nil
}

func (r *PostgresRecorder) RecordAnalysis(ctx context.Context, a *model.Analysis) error {
	s := SnapshotOf(a)
	const query = `INSERT INTO analyses
		(id, symbol, analyzed_at, price, baseline, window_weeks, zone, deviation_pct, weekly_rsi)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query,
		s.ID, s.Symbol, s.AnalyzedAt, s.Price, s.Baseline, s.Window,
		string(s.Zone), s.DeviationPct, s.WeeklyRSI,
	)
	if err != nil {
		return fmt.Errorf("postgres: record analysis %s: %w", s.Symbol, err)
	}
	return nil
}

func (r *PostgresRecorder) RecordTransition(ctx context.Context, t *model.ZoneTransition) error {
	const query = `INSERT INTO zone_transitions (symbol, at, from_zone, to_zone, price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, t.Symbol, t.At, string(t.From), string(t.To), t.Price)
	if err != nil {
		return fmt.Errorf("postgres: record transition %s: %w", t.Symbol, err)
	}
	return nil
}

func (r *PostgresRecorder) History(ctx context.Context, symbol string, limit int) ([]Snapshot, error) {
	const query = `SELECT id, symbol, analyzed_at, price, baseline, window_weeks, zone, deviation_pct, weekly_rsi
		FROM analyses WHERE symbol = $1
		ORDER BY analyzed_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, symbol, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("postgres: query history %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			s    Snapshot
			at   time.Time
			zone string
		)
		if err := rows.Scan(&s.ID, &s.Symbol, &at, &s.Price, &s.Baseline,
			&s.Window, &zone, &s.DeviationPct, &s.WeeklyRSI); err != nil {
			return nil, fmt.Errorf("postgres: scan history: %w", err)
		}
		s.Zone = model.Zone(zone)
		s.AnalyzedAt = at.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRecorder) Close() error {
	log.Info().Msg("closing postgres recorder")
	r.pool.Close()
	return nil
}
