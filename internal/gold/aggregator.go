package gold

import (
	"context"
	"log/slog"
	"time"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/config"
	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/metrics"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/storage"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// Gold product names, used in object keys and metrics labels.
const (
	ProductMonthlyPanel = "monthly_panel"
	ProductLaborPanel   = "labor_panel"
	ProductDashboard    = "dashboard"
)

// ProductResult records the outcome of one gold product build.
type ProductResult struct {
	Product string
	Key     string
	Rows    int
	Err     error
}

// AggregateResult is the outcome of one gold batch.
type AggregateResult struct {
	Products map[string]*ProductResult
	// Dashboard holds the built dashboard rows when that product
	// succeeded, for downstream exports.
	Dashboard []DashboardRow
}

// Success reports whether at least one product was built, or all of them
// under strict mode.
func (r *AggregateResult) Success(strict bool) bool {
	built := 0
	for _, p := range r.Products {
		if p.Err == nil {
			built++
		} else if strict {
			return false
		}
	}
	return built > 0
}

// Aggregator builds and persists the gold products from the latest silver
// snapshots.
type Aggregator struct {
	store       storage.ObjectStore
	pipelineCfg config.PipelineConfig
	logger      *slog.Logger
	now         func() time.Time
}

// NewAggregator wires a gold aggregator. now is injectable for
// deterministic snapshot keys in tests; pass nil for wall-clock time.
func NewAggregator(store storage.ObjectStore, pipelineCfg config.PipelineConfig, logger *slog.Logger, now func() time.Time) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Aggregator{store: store, pipelineCfg: pipelineCfg, logger: logger, now: now}
}

// LoadLatestSilver reads the newest silver snapshot of every catalog
// indicator. An indicator whose snapshot is missing, unreadable or corrupt
// is omitted rather than failing the load, so the remaining indicators
// still feed the products that can be built without it.
func (a *Aggregator) LoadLatestSilver(ctx context.Context) map[string]*timeseries.Series {
	series := make(map[string]*timeseries.Series)
	for _, ind := range catalog.All() {
		key, err := storage.Latest(ctx, a.store, storage.IndicatorPrefix(storage.LayerSilver, ind.Key))
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrTypeSourceNotFound) {
				a.logger.Warn("no silver snapshot", slog.String("indicator", ind.Key))
			} else {
				a.logger.Error("silver listing failed",
					slog.String("indicator", ind.Key),
					slog.String("error", err.Error()))
			}
			continue
		}
		var data []byte
		err = storage.WithRetry(ctx, a.logger, a.pipelineCfg.RetryAttempts, a.pipelineCfg.RetryDelay, "load silver", func() error {
			var getErr error
			data, getErr = a.store.Get(ctx, key)
			return getErr
		})
		if err != nil {
			a.logger.Error("silver read failed",
				slog.String("indicator", ind.Key),
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}
		s, err := storage.DecodeSeries(key, data)
		if err != nil {
			a.logger.Error("corrupt silver snapshot",
				slog.String("indicator", ind.Key),
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}
		// CSV snapshots carry no metadata columns.
		if s.Meta.Indicator == "" {
			s.Meta.Indicator = ind.Key
			s.Meta.IndicatorName = ind.Name
			s.Meta.Unit = ind.Unit
			s.Meta.Frequency = ind.Frequency
		}
		series[ind.Key] = s
	}
	return series
}

// Run loads the latest silver layer and builds every gold product,
// isolating per-product failures.
func (a *Aggregator) Run(ctx context.Context) *AggregateResult {
	series := a.LoadLatestSilver(ctx)

	result := &AggregateResult{Products: make(map[string]*ProductResult)}
	at := a.now()

	monthly, merr := BuildMonthlyPanel(series)
	result.Products[ProductMonthlyPanel] = runProduct(ctx, a, ProductMonthlyPanel, monthly, merr, at)

	labor, lerr := BuildLaborPanel(series)
	result.Products[ProductLaborPanel] = runProduct(ctx, a, ProductLaborPanel, labor, lerr, at)

	dashboard, derr := BuildDashboard(series)
	result.Products[ProductDashboard] = runProduct(ctx, a, ProductDashboard, dashboard, derr, at)
	if derr == nil && result.Products[ProductDashboard].Err == nil {
		result.Dashboard = dashboard
	}

	return result
}

// runProduct encodes and writes one product, folding build and storage
// errors into the result so siblings keep running.
func runProduct[T any](ctx context.Context, a *Aggregator, product string, rows []T, buildErr error, at time.Time) *ProductResult {
	res := &ProductResult{Product: product, Rows: len(rows)}
	if buildErr != nil {
		res.Err = buildErr
		metrics.GoldProducts.WithLabelValues(product, "failed").Inc()
		a.logger.Warn("gold product skipped",
			slog.String("product", product),
			slog.String("error", buildErr.Error()))
		return res
	}

	data, err := storage.EncodeParquet(rows)
	if err == nil {
		res.Key = storage.GoldKey(product, "parquet", at)
		err = storage.WithRetry(ctx, a.logger, a.pipelineCfg.RetryAttempts, a.pipelineCfg.RetryDelay, "persist gold", func() error {
			return a.store.Put(ctx, res.Key, data)
		})
	}
	if err != nil {
		res.Err = err
		metrics.GoldProducts.WithLabelValues(product, "failed").Inc()
		a.logger.Error("gold product failed",
			slog.String("product", product),
			slog.String("error", err.Error()))
		return res
	}

	metrics.GoldProducts.WithLabelValues(product, "success").Inc()
	a.logger.Info("gold product written",
		slog.String("product", product),
		slog.String("key", res.Key),
		slog.Int("rows", res.Rows))
	return res
}
