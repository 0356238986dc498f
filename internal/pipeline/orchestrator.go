// Package pipeline drives the bronze to silver refinement batch: it walks
// every catalog indicator through a small stage machine, isolating
// per-indicator failures so one bad source never sinks the batch.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/config"
	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/infrastructure"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/metrics"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/storage"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/transform"
)

// Stage is one step of the per-indicator refinement machine.
type Stage string

const (
	StageDiscover  Stage = "discover"
	StageLoad      Stage = "load"
	StageTransform Stage = "transform"
	StageValidate  Stage = "validate"
	StagePersist   Stage = "persist"
	StageDone      Stage = "done"
	// StageSkipped means no bronze snapshot existed for the indicator.
	StageSkipped Stage = "skipped"
	StageFailed  Stage = "failed"
)

// IndicatorState is the terminal record of one indicator's run.
type IndicatorState struct {
	Indicator catalog.Indicator
	Stage     Stage
	Err       error
	BronzeKey string
	SilverKey string
	Report    *Report
}

// BatchResult aggregates the per-indicator outcomes of one refinement run.
type BatchResult struct {
	States map[string]*IndicatorState
}

// Succeeded returns the keys of indicators that reached silver.
func (r *BatchResult) Succeeded() []string {
	var keys []string
	for key, st := range r.States {
		if st.Stage == StageDone {
			keys = append(keys, key)
		}
	}
	return keys
}

// Success reports batch success. The default contract is weak: one
// indicator reaching silver keeps the batch alive. Strict mode demands
// that every indicator succeed, counting a missing bronze snapshot as a
// failure.
func (r *BatchResult) Success(strict bool) bool {
	done := 0
	for _, st := range r.States {
		if st.Stage == StageDone {
			done++
		} else if strict {
			return false
		}
	}
	return done > 0
}

// Orchestrator runs the refinement batch over an object store.
type Orchestrator struct {
	store         storage.ObjectStore
	registry      *transform.Registry
	normalizer    *timeseries.Normalizer
	pipelineCfg   config.PipelineConfig
	validationCfg config.ValidationConfig
	silverFormat  string
	logger        *slog.Logger
	now           func() time.Time
}

// NewOrchestrator wires a refinement orchestrator. now is injectable for
// deterministic snapshot keys in tests; pass nil for wall-clock time.
func NewOrchestrator(store storage.ObjectStore, registry *transform.Registry, cfg *config.Config, logger *slog.Logger, now func() time.Time) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		store:         store,
		registry:      registry,
		normalizer:    timeseries.NewNormalizer(logger),
		pipelineCfg:   cfg.Pipeline,
		validationCfg: cfg.Validation,
		silverFormat:  cfg.Storage.SilverFormat,
		logger:        logger,
		now:           now,
	}
}

// Run refines every catalog indicator.
func (o *Orchestrator) Run(ctx context.Context) *BatchResult {
	return o.RunIndicators(ctx, catalog.Keys())
}

// RunIndicators refines the named indicators, isolating failures per
// indicator.
func (o *Orchestrator) RunIndicators(ctx context.Context, keys []string) *BatchResult {
	result := &BatchResult{States: make(map[string]*IndicatorState, len(keys))}
	logger := o.logger
	if runID := infrastructure.GetRunID(ctx); runID != "" {
		logger = logger.With(slog.String("run_id", runID))
	}

	for _, key := range keys {
		ind, ok := catalog.Lookup(key)
		if !ok {
			result.States[key] = &IndicatorState{
				Indicator: catalog.Indicator{Key: key},
				Stage:     StageFailed,
				Err:       apperrors.NewUnsupportedIndicatorError(key),
			}
			metrics.IndicatorsProcessed.WithLabelValues(key, "failed").Inc()
			continue
		}

		st := o.processIndicator(ctx, ind, logger)
		result.States[key] = st
		switch st.Stage {
		case StageDone:
			metrics.IndicatorsProcessed.WithLabelValues(key, "success").Inc()
			logger.Info("indicator refined",
				slog.String("indicator", key),
				slog.String("silver_key", st.SilverKey))
		case StageSkipped:
			metrics.IndicatorsProcessed.WithLabelValues(key, "skipped").Inc()
			logger.Warn("indicator skipped, no bronze snapshot",
				slog.String("indicator", key))
		default:
			metrics.IndicatorsProcessed.WithLabelValues(key, "failed").Inc()
			logger.Error("indicator failed",
				slog.String("indicator", key),
				slog.String("stage", string(st.Stage)),
				slog.String("error", st.Err.Error()))
		}
	}
	return result
}

func (o *Orchestrator) processIndicator(ctx context.Context, ind catalog.Indicator, logger *slog.Logger) *IndicatorState {
	st := &IndicatorState{Indicator: ind, Stage: StageDiscover}
	fail := func(err error) *IndicatorState {
		st.Err = err
		st.Stage = StageFailed
		return st
	}

	bronzeKey, err := storage.Latest(ctx, o.store, storage.IndicatorPrefix(storage.LayerBronze, ind.Key))
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeSourceNotFound) {
			st.Stage = StageSkipped
			st.Err = err
			return st
		}
		return fail(err)
	}
	st.BronzeKey = bronzeKey

	st.Stage = StageLoad
	var raw []byte
	err = storage.WithRetry(ctx, logger, o.pipelineCfg.RetryAttempts, o.pipelineCfg.RetryDelay, "load bronze", func() error {
		var getErr error
		raw, getErr = o.store.Get(ctx, bronzeKey)
		return getErr
	})
	if err != nil {
		return fail(err)
	}
	table, err := storage.DecodeRawTable(raw)
	if err != nil {
		return fail(err)
	}
	series, err := o.normalizer.Normalize(table, timeseries.NormalizeSpec{
		Indicator:   ind.Key,
		ValueColumn: ind.ValueColumn,
	})
	if err != nil {
		return fail(err)
	}

	st.Stage = StageTransform
	policy, err := o.registry.ForIndicator(ind)
	if err != nil {
		return fail(err)
	}
	refined, err := policy.Transform(ctx, ind, series)
	if err != nil {
		return fail(err)
	}

	st.Stage = StageValidate
	st.Report = validateSeries(refined, o.validationCfg.NullRatioThreshold)
	if !st.Report.OK() {
		for _, issue := range st.Report.Issues {
			logger.Warn("data quality issue",
				slog.String("indicator", ind.Key),
				slog.String("issue", issue))
		}
		if o.validationCfg.Strict {
			return fail(apperrors.NewValidationError("strict validation rejected the series").
				WithContext("indicator", ind.Key).
				WithContext("issues", len(st.Report.Issues)))
		}
	}

	st.Stage = StagePersist
	data, ext, err := o.encodeSilver(refined)
	if err != nil {
		return fail(err)
	}
	silverKey := storage.TimestampedKey(storage.LayerSilver, ind.Key, ext, o.now())
	err = storage.WithRetry(ctx, logger, o.pipelineCfg.RetryAttempts, o.pipelineCfg.RetryDelay, "persist silver", func() error {
		return o.store.Put(ctx, silverKey, data)
	})
	if err != nil {
		return fail(err)
	}

	st.SilverKey = silverKey
	st.Stage = StageDone
	return st
}

func (o *Orchestrator) encodeSilver(s *timeseries.Series) ([]byte, string, error) {
	switch o.silverFormat {
	case "csv":
		data, err := storage.EncodeSeriesCSV(s)
		return data, "csv", err
	default:
		data, err := storage.EncodeSeriesParquet(s)
		return data, "parquet", err
	}
}
