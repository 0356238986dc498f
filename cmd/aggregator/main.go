// Command aggregator builds the gold-layer analytical products from the
// latest silver snapshots and optionally exports the dashboard extract as
// a spreadsheet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/config"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/exporter"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/gold"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/infrastructure"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/metrics"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/storage"
)

func main() {
	excelPath := flag.String("excel", "", "also export the dashboard as a spreadsheet at this path")
	strict := flag.Bool("strict", false, "fail the batch unless every gold product is built")
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

	aggregator := gold.NewAggregator(store, cfg.Pipeline, logger, nil)

	logger.Info("aggregation batch started")
	result := aggregator.Run(ctx)

	built := 0
	for _, p := range result.Products {
		if p.Err == nil {
			built++
		}
	}
	logger.Info("aggregation batch finished",
		slog.Int("built", built),
		slog.Int("total", len(result.Products)))

	if *excelPath != "" && len(result.Dashboard) > 0 {
		if err := exporter.WriteDashboardExcel(result.Dashboard, *excelPath); err != nil {
			logger.Error("dashboard export failed",
				slog.String("path", *excelPath),
				slog.String("error", err.Error()))
		} else {
			logger.Info("dashboard exported", slog.String("path", *excelPath))
		}
	}

	if err := metrics.Push(cfg.Metrics.PushURL, cfg.Metrics.Job); err != nil {
		logger.Warn("metrics push failed", slog.String("error", err.Error()))
	}

	if !result.Success(*strict || cfg.Pipeline.Strict) {
		os.Exit(1)
	}
}
