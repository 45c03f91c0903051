package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ValueZone/internal/chart"
)

var (
	watchOnce    bool
	watchSymbols []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Evaluate the watchlist on a schedule and alert on zone changes",
	Example: `  # evaluate once and print the zones
  valuezone watch --once --symbols SPY,QQQ,BTC-USD

  # run on the configured cron schedule until interrupted
  valuezone watch`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "evaluate the watchlist once and exit")
	watchCmd.Flags().StringSliceVar(&watchSymbols, "symbols", nil, "override watch.symbols")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if len(watchSymbols) > 0 {
		cfg.Watch.Symbols = watchSymbols
	}
	if len(cfg.Watch.Symbols) == 0 {
		return fmt.Errorf("watchlist is empty: set watch.symbols or --symbols")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.scheduler(ctx)
	if err != nil {
		return err
	}

	if watchOnce {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SYMBOL\tPRICE\tBASELINE\tZONE\tCHANGE")
		for _, r := range sched.RunNow(ctx) {
			if r.Err != nil {
				fmt.Fprintf(tw, "%s\t-\t-\terror: %v\t\n", r.Symbol, r.Err)
				continue
			}
			change := ""
			if t := r.Transition; t != nil {
				change = chart.Label(t.From) + " -> " + chart.Label(t.To)
			}
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%s\t%s\n", r.Symbol,
				r.Analysis.Assignment.Price, r.Analysis.LatestBaseline,
				chart.Label(r.Analysis.Assignment.Zone), change)
		}
		return tw.Flush()
	}

	if err := startWatch(ctx, a, sched); err != nil {
		return err
	}
	defer sched.Stop()

	log.Info().Str("cron", cfg.Watch.Cron).Msg("watching, press Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}
