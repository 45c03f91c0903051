package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ValueZone/internal/collector"
	"ValueZone/internal/config"
	"ValueZone/internal/metrics"
	"ValueZone/internal/notifier"
	"ValueZone/internal/recorder"
	"ValueZone/internal/scheduler"
	"ValueZone/internal/valuation"
	"ValueZone/internal/zonestate"
)

// app holds the wired components shared by all subcommands.
type app struct {
	cfg      *config.Config
	metrics  *metrics.Registry
	service  *valuation.Service
	recorder recorder.Recorder
	state    zonestate.Store
	telegram *notifier.TelegramNotifier
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", fetcher.Name()).Msg("data source ready")

	col := collector.NewCollector(fetcher, cfg.Valuation.Period, cfg.Valuation.FallbackPeriod, cfg.Valuation.Interval)
	reg := metrics.NewRegistry()
	svc := valuation.NewService(col, cfg.Valuation.Window, cfg.Policy())
	svc.Observer = reg

	a := &app{
		cfg:      cfg,
		metrics:  reg,
		service:  svc,
		recorder: newRecorder(ctx, cfg),
	}
	if cfg.Telegram.BotToken != "" {
		a.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}
	return a, nil
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(collector.YahooOptions{
			Proxy:         cfg.Proxy,
			Timeout:       ds.Timeout,
			RatePerSecond: ds.RatePerSecond,
			Burst:         ds.Burst,
			AdjustedClose: ds.AdjustedClose,
		}), nil
	case "vstrader":
		return collector.NewVsTraderFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy, ds.Timeout), nil
	case "mock":
		return &collector.MockFetcher{Price: ds.MockPrice}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", ds.Provider)
	}
}

// newRecorder prefers Postgres, then SQLite, and degrades to a no-op recorder.
func newRecorder(ctx context.Context, cfg *config.Config) recorder.Recorder {
	if dsn := cfg.Database.PostgresDSN; dsn != "" {
		pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pr, err := recorder.NewPostgresRecorder(pctx, dsn)
		if err == nil {
			return pr
		}
		log.Warn().Err(err).Msg("init postgres recorder failed, trying sqlite")
	}
	if path := cfg.Database.SQLitePath; path != "" {
		sr, err := recorder.NewSQLiteRecorder(path)
		if err == nil {
			return sr
		}
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
	}
	return recorder.NewNoopRecorder()
}

func (a *app) zoneState(ctx context.Context) (zonestate.Store, error) {
	if a.state != nil {
		return a.state, nil
	}
	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	st, err := zonestate.Open(sctx, zonestate.Options{
		RedisAddr:     a.cfg.Redis.Addr,
		RedisPassword: a.cfg.Redis.Password,
		RedisDB:       a.cfg.Redis.DB,
		KeyPrefix:     a.cfg.Redis.KeyPrefix,
		StateFile:     a.cfg.Watch.StateFile,
	})
	if err != nil {
		return nil, fmt.Errorf("open zone state: %w", err)
	}
	a.state = st
	return st, nil
}

func (a *app) scheduler(ctx context.Context) (*scheduler.Scheduler, error) {
	st, err := a.zoneState(ctx)
	if err != nil {
		return nil, err
	}
	var n scheduler.Notifier
	if a.telegram != nil {
		n = a.telegram
	}
	s := scheduler.NewScheduler(ctx, a.service, a.recorder, st, n, a.cfg.Watch.Symbols, a.cfg.Watch.Concurrency)
	s.Observer = a.metrics
	return s, nil
}

func (a *app) Close() error {
	var errs []error
	if a.state != nil {
		errs = append(errs, a.state.Close())
	}
	errs = append(errs, a.recorder.Close())
	return errors.Join(errs...)
}
