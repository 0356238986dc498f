package storage

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/metrics"
)

// WithRetry runs fn up to attempts times with a fixed delay between tries.
// Only errors the taxonomy marks retryable are retried; anything else is
// returned immediately.
func WithRetry(ctx context.Context, logger *slog.Logger, attempts int, delay time.Duration, op string, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !apperrors.Retryable(err) || attempt == attempts {
			return err
		}
		metrics.StorageRetries.Inc()
		logger.Warn("retrying operation",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
