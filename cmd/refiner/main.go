// Command refiner loads the latest bronze snapshot of every catalog
// indicator, normalizes and refines it, and writes the silver layer.
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
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/config"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/infrastructure"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/metrics"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/pipeline"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/storage"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/transform"
)

func main() {
	indicators := flag.String("indicators", "", "comma separated indicator keys (default: the whole catalog)")
	strict := flag.Bool("strict", false, "fail the batch unless every indicator reaches silver")
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

	orchestrator := pipeline.NewOrchestrator(store, transform.NewRegistry(), cfg, logger, nil)

	logger.Info("refinement batch started", slog.Int("indicators", len(keys)))
	result := orchestrator.RunIndicators(ctx, keys)
	logger.Info("refinement batch finished",
		slog.Int("refined", len(result.Succeeded())),
		slog.Int("total", len(keys)))

	if err := metrics.Push(cfg.Metrics.PushURL, cfg.Metrics.Job); err != nil {
		logger.Warn("metrics push failed", slog.String("error", err.Error()))
	}

	if !result.Success(*strict || cfg.Pipeline.Strict) {
		os.Exit(1)
	}
}
