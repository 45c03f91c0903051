package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ValueZone/internal/collector"
	"ValueZone/internal/model"
	"ValueZone/internal/notifier"
	"ValueZone/internal/recorder"
	"ValueZone/internal/zonestate"
)

// Analyzer computes a valuation; *valuation.Service satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*model.Analysis, error)
}

// Notifier delivers chat messages; *notifier.TelegramNotifier satisfies it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Observer receives watch-run metrics; *metrics.Registry satisfies it.
type Observer interface {
	ObserveWatchRun()
	ObserveTransition(t model.ZoneTransition)
}

// Result is the outcome of evaluating one watched symbol.
type Result struct {
	Symbol     string
	Analysis   *model.Analysis
	Transition *model.ZoneTransition
	Err        error
}

// Scheduler evaluates the watchlist on a cron schedule and alerts on zone changes.
type Scheduler struct {
	Cron        *cron.Cron
	Analyzer    Analyzer
	Recorder    recorder.Recorder
	State       zonestate.Store
	Notifier    Notifier // nil disables alerts
	Observer    Observer // optional
	Symbols     []string
	Concurrency int
	Ctx         context.Context

	mu      sync.Mutex // serializes watch runs
	retries int
}

// NewScheduler creates a new Scheduler. Symbols are normalized and de-duplicated.
func NewScheduler(ctx context.Context, an Analyzer, rec recorder.Recorder, state zonestate.Store, n Notifier, symbols []string, concurrency int) *Scheduler {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Analyzer:    an,
		Recorder:    rec,
		State:       state,
		Notifier:    n,
		Symbols:     dedupe(symbols),
		Concurrency: concurrency,
		Ctx:         ctx,
		retries:     3,
	}
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = collector.NormalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Register adds the watchlist task under the given cron spec (seconds field first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunNow(s.Ctx) }); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("symbols", len(s.Symbols)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow evaluates every watched symbol, at most Concurrency at a time, and
// returns the results in watchlist order.
func (s *Scheduler) RunNow(ctx context.Context) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info().Int("symbols", len(s.Symbols)).Msg("running watchlist")
	if s.Observer != nil {
		s.Observer.ObserveWatchRun()
	}

	results := make([]Result, len(s.Symbols))
	var g errgroup.Group
	g.SetLimit(s.Concurrency)
	for i, sym := range s.Symbols {
		g.Go(func() error {
			results[i] = s.evaluate(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, notifier.FormatError(r.Symbol, r.Err))
		}
	}
	if len(failed) > 0 {
		s.trySend(ctx, "❌ Watchlist run had failures\n"+strings.Join(failed, "\n"))
	}
	return results
}

func (s *Scheduler) evaluate(ctx context.Context, symbol string) Result {
	res := Result{Symbol: symbol}
	a, err := s.Analyzer.Analyze(ctx, symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("watch analysis failed")
		res.Err = err
		return res
	}
	res.Analysis = a

	if err := s.Recorder.RecordAnalysis(ctx, a); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("record analysis")
	}

	cur := a.Assignment.Zone
	prev, seen, err := s.State.Get(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("read zone state")
	}
	if seen && prev.Zone != cur {
		t := &model.ZoneTransition{
			Symbol: symbol,
			From:   prev.Zone,
			To:     cur,
			Price:  a.Assignment.Price,
			At:     analyzedAt(a),
		}
		res.Transition = t
		log.Info().Str("symbol", symbol).Str("from", string(t.From)).Str("to", string(t.To)).Msg("zone changed")

		if err := s.Recorder.RecordTransition(ctx, t); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("record transition")
		}
		if s.Observer != nil {
			s.Observer.ObserveTransition(*t)
		}
		s.trySend(ctx, notifier.FormatZoneTransition(t)+"\n\n"+notifier.FormatAnalysis(a))
	}

	entry := zonestate.Entry{Zone: cur, Price: a.Assignment.Price, At: analyzedAt(a)}
	if err := s.State.Set(ctx, symbol, entry); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("write zone state")
	}
	return res
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	// Telegram appends "@botname" to commands in group chats.
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch cmd {
	case "/zone":
		if len(fields) < 2 {
			return "Usage: /zone &lt;SYMBOL&gt;"
		}
		sym := collector.NormalizeSymbol(fields[1])
		a, err := s.Analyzer.Analyze(ctx, sym)
		if err != nil {
			return notifier.FormatError(sym, err)
		}
		return notifier.FormatAnalysis(a)
	case "/watchlist":
		return notifier.FormatWatchlist(s.Symbols, s.lastZones(ctx))
	case "/run":
		zones := make(map[string]model.Zone)
		for _, r := range s.RunNow(ctx) {
			if r.Err == nil {
				zones[r.Symbol] = r.Analysis.Assignment.Zone
			}
		}
		return notifier.FormatWatchlist(s.Symbols, zones)
	default:
		return notifier.HelpText()
	}
}

func (s *Scheduler) lastZones(ctx context.Context) map[string]model.Zone {
	zones := make(map[string]model.Zone, len(s.Symbols))
	for _, sym := range s.Symbols {
		if e, ok, err := s.State.Get(ctx, sym); err == nil && ok {
			zones[sym] = e.Zone
		}
	}
	return zones
}

// Transitions extracts the zone changes from a run, sorted by symbol.
func Transitions(results []Result) []model.ZoneTransition {
	var out []model.ZoneTransition
	for _, r := range results {
		if r.Transition != nil {
			out = append(out, *r.Transition)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, s.retries); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

func analyzedAt(a *model.Analysis) time.Time {
	if a.AnalyzedAt.IsZero() {
		return time.Now().UTC()
	}
	return a.AnalyzedAt
}
