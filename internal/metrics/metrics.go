// Package metrics exposes the batch pipeline counters. Binaries push them
// to a Pushgateway at the end of a run when one is configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// RowsDropped counts rows discarded during numeric/date coercion.
	RowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "macro",
		Subsystem: "normalizer",
		Name:      "rows_dropped_total",
		Help:      "Rows dropped during normalization because date or value could not be parsed.",
	}, []string{"indicator"})

	// IndicatorsProcessed counts per-indicator refinement outcomes.
	IndicatorsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "macro",
		Subsystem: "pipeline",
		Name:      "indicators_processed_total",
		Help:      "Indicators processed by the refinement orchestrator, by outcome.",
	}, []string{"indicator", "status"})

	// StorageRetries counts retried object store operations.
	StorageRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "macro",
		Subsystem: "storage",
		Name:      "retries_total",
		Help:      "Object store operations that were retried after a failure.",
	})

	// CollectorFetches counts raw series fetches, by source and outcome.
	CollectorFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "macro",
		Subsystem: "collector",
		Name:      "fetches_total",
		Help:      "Raw indicator fetches against the statistical APIs, by outcome.",
	}, []string{"source", "status"})

	// GoldProducts counts gold products built, by outcome.
	GoldProducts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "macro",
		Subsystem: "gold",
		Name:      "products_total",
		Help:      "Gold products (panels, dashboard) built, by outcome.",
	}, []string{"product", "status"})
)

// Push sends the default registry to a Pushgateway. A no-op when url is
// empty so callers can pass the config value through unconditionally.
func Push(url, job string) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push()
}
