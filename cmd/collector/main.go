// Command collector downloads the raw observations of every catalog
// indicator from the BCB and IBGE APIs and lands them in the bronze layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/collect"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/config"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/infrastructure"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/metrics"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/storage"
)

func main() {
	indicators := flag.String("indicators", "", "comma separated indicator keys (default: the whole catalog)")
	strict := flag.Bool("strict", false, "fail the batch unless every indicator is collected")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer infrastructure.CloseLogFile()

	store, err := storage.NewLocalStore(cfg.Storage.DataDir)
	if err != nil {
		logger.Error("open object store", slog.String("error", err.Error()))
		os.Exit(2)
	}

	runID := uuid.NewString()
	ctx := infrastructure.WithRunID(context.Background(), runID)
	logger = logger.With(slog.String("run_id", runID))

	keys := catalog.Keys()
	if *indicators != "" {
		keys = strings.Split(*indicators, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
	}

	runner := collect.NewRunner(store, cfg.Collector, logger, nil,
		collect.NewBCBClient(cfg.Collector.BCBBaseURL, cfg.Collector.RequestTimeout),
		collect.NewIBGEClient(cfg.Collector.IBGEBaseURL, cfg.Collector.RequestTimeout),
	)

	logger.Info("collection batch started", slog.Int("indicators", len(keys)))
	result := runner.Run(ctx, keys)

	collected, failed := 0, 0
	for key, out := range result.Outcomes {
		if out.Err == nil {
			collected++
			continue
		}
		failed++
		logger.Warn("indicator not collected",
			slog.String("indicator", key),
			slog.String("error", out.Err.Error()))
	}
	logger.Info("collection batch finished",
		slog.Int("collected", collected),
		slog.Int("failed", failed))

	if err := metrics.Push(cfg.Metrics.PushURL, cfg.Metrics.Job); err != nil {
		logger.Warn("metrics push failed", slog.String("error", err.Error()))
	}

	if !result.Success(*strict || cfg.Pipeline.Strict) {
		os.Exit(1)
	}
}
