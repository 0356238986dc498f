package collect

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/config"
	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/infrastructure"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/storage"
)

// IndicatorOutcome is the terminal record of one indicator's collection.
type IndicatorOutcome struct {
	Indicator catalog.Indicator
	BronzeKey string
	Rows      int
	Err       error
}

// RunResult aggregates the per-indicator outcomes of one collection batch.
type RunResult struct {
	mu       sync.Mutex
	Outcomes map[string]*IndicatorOutcome
}

func (r *RunResult) record(o *IndicatorOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outcomes[o.Indicator.Key] = o
}

// Success reports batch success: one collected indicator by default, all
// of them under strict mode.
func (r *RunResult) Success(strict bool) bool {
	collected := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			collected++
		} else if strict {
			return false
		}
	}
	return collected > 0
}

// Runner fans collection out over the catalog under a shared rate limit
// and writes each raw table to the bronze layer.
type Runner struct {
	store      storage.ObjectStore
	collectors map[catalog.Source]Collector
	limiter    *rate.Limiter
	cfg        config.CollectorConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner wires a collection runner from the configured collectors. now
// is injectable for deterministic snapshot keys in tests; pass nil for
// wall-clock time.
func NewRunner(store storage.ObjectStore, cfg config.CollectorConfig, logger *slog.Logger, now func() time.Time, collectors ...Collector) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	bySource := make(map[catalog.Source]Collector, len(collectors))
	for _, c := range collectors {
		bySource[c.Source()] = c
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &Runner{
		store:      store,
		collectors: bySource,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		cfg:        cfg,
		logger:     logger,
		now:        now,
	}
}

// Run collects the named indicators concurrently. Failures are isolated
// per indicator; the returned result never carries a batch-level error
// unless the context is canceled.
func (r *Runner) Run(ctx context.Context, keys []string) *RunResult {
	result := &RunResult{Outcomes: make(map[string]*IndicatorOutcome, len(keys))}
	window := WindowEndingNow(r.cfg.WindowDays, r.now)
	logger := r.logger
	if runID := infrastructure.GetRunID(ctx); runID != "" {
		logger = logger.With(slog.String("run_id", runID))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MaxConcurrent)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			result.record(r.collectOne(gctx, key, window, logger))
			return nil
		})
	}
	// Workers never return errors, so this only reflects ctx cancellation.
	_ = g.Wait()
	return result
}

func (r *Runner) collectOne(ctx context.Context, key string, window Window, logger *slog.Logger) *IndicatorOutcome {
	ind, ok := catalog.Lookup(key)
	if !ok {
		return &IndicatorOutcome{
			Indicator: catalog.Indicator{Key: key},
			Err:       apperrors.NewUnsupportedIndicatorError(key),
		}
	}
	outcome := &IndicatorOutcome{Indicator: ind}

	collector, ok := r.collectors[ind.Source]
	if !ok {
		outcome.Err = apperrors.NewConfigError("no collector for source", nil).
			WithContext("indicator", ind.Key).
			WithContext("source", string(ind.Source))
		return outcome
	}

	if err := r.limiter.Wait(ctx); err != nil {
		outcome.Err = err
		return outcome
	}

	table, err := collector.Fetch(ctx, ind, window)
	if err != nil {
		outcome.Err = err
		logger.Error("collection failed",
			slog.String("indicator", ind.Key),
			slog.String("error", err.Error()))
		return outcome
	}

	data, err := storage.EncodeRawTable(table)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	key = storage.TimestampedKey(storage.LayerBronze, ind.Key, "csv", r.now())
	if err := r.store.Put(ctx, key, data); err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.BronzeKey = key
	outcome.Rows = len(table.Rows)
	logger.Info("indicator collected",
		slog.String("indicator", ind.Key),
		slog.String("bronze_key", key),
		slog.Int("rows", outcome.Rows))
	return outcome
}
