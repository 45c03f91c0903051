// Package zonestate remembers the last zone reported for each symbol so the
// watch scheduler can detect transitions between runs.
package zonestate

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"ValueZone/internal/model"
)

// Entry is the last known valuation outcome for a symbol.
type Entry struct {
	Zone  model.Zone `json:"zone"`
	Price float64    `json:"price"`
	At    time.Time  `json:"at"`
}

// Store reads and writes last-zone entries keyed by symbol.
type Store interface {
	// Get returns ok=false when nothing is stored for symbol.
	Get(ctx context.Context, symbol string) (Entry, bool, error)
	Set(ctx context.Context, symbol string, e Entry) error
	Close() error
}

// Options selects the backing store for Open.
type Options struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	StateFile     string
}

// Open returns a Redis store when RedisAddr is set and reachable, otherwise
// a memory store persisted to StateFile (if any).
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.RedisAddr != "" {
		rs, err := NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.KeyPrefix)
		if err == nil {
			return rs, nil
		}
		log.Warn().Err(err).Str("addr", opts.RedisAddr).Msg("redis unavailable, falling back to local zone state")
	}
	return NewMemoryStore(opts.StateFile)
}
