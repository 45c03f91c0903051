package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ValueZone/internal/scheduler"
	"ValueZone/internal/server"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI and JSON API",
	Long: `Serve the valuation page, SVG charts and the JSON API.

With --watch (or when watch.symbols is configured) the watchlist scheduler and
the Telegram command bot run in the same process.`,
	Example: `  valuezone serve
  HTTP_ADDR=:9090 valuezone serve --watch`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "also run the watchlist scheduler")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.service, server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Presets:      cfg.Presets,
		Metrics:      a.metrics,
		Recorder:     a.recorder,
	})

	if serveWatch || len(cfg.Watch.Symbols) > 0 {
		sched, err := a.scheduler(ctx)
		if err != nil {
			return err
		}
		if err := startWatch(ctx, a, sched); err != nil {
			return err
		}
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received, stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startWatch registers and starts the cron task, the Telegram bot and the
// optional run on start. It returns once everything is running.
func startWatch(ctx context.Context, a *app, sched *scheduler.Scheduler) error {
	if err := sched.Register(cfg.Watch.Cron); err != nil {
		return err
	}
	sched.Start()

	if a.telegram != nil && cfg.Telegram.Polling {
		go a.telegram.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}
	if cfg.Watch.RunOnStart {
		log.Info().Msg("run_on_start enabled, evaluating watchlist now")
		go sched.RunNow(ctx)
	}
	return nil
}
