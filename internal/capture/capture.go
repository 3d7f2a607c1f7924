// Package capture sweeps every known location and appends a fresh health
// snapshot, so that trend and aggregate views keep moving between requests.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kamalsai369/EcoMind/internal/domain"
	"github.com/kamalsai369/EcoMind/internal/observability"
)

// SnapshotService is the slice of the forest service a capture sweep needs.
type SnapshotService interface {
	KnownLocations(ctx context.Context) ([]domain.Location, error)
	Health(ctx context.Context, name string) (domain.HealthSnapshot, error)
}

// Runner executes capture sweeps with bounded concurrency.
type Runner struct {
	service     SnapshotService
	logger      *slog.Logger
	metrics     *observability.Metrics
	concurrency int
}

// NewRunner creates a Runner. Concurrency values below 1 are raised to 1.
func NewRunner(service SnapshotService, concurrency int, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		service:     service,
		logger:      logger,
		metrics:     metrics,
		concurrency: concurrency,
	}
}

// RunOnce synthesizes one snapshot per known location. Per-location failures
// are logged and counted but do not stop the sweep; context cancellation does.
func (r *Runner) RunOnce(ctx context.Context) error {
	start := time.Now()
	r.metrics.CaptureRunning.Set(1)
	defer r.metrics.CaptureRunning.Set(0)

	locs, err := r.service.KnownLocations(ctx)
	if err != nil {
		r.metrics.CaptureRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("list locations: %w", err)
	}
	if len(locs) == 0 {
		r.metrics.CaptureRuns.WithLabelValues("success").Inc()
		r.logger.Debug("capture sweep skipped, no locations registered")
		return nil
	}

	var failed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.concurrency)

	for _, loc := range locs {
		eg.Go(func() error {
			if _, err := r.service.Health(egCtx, loc.Name); err != nil {
				// Cancellation aborts the sweep; anything else is a
				// per-location failure the rest should survive.
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				failed.Add(1)
				r.logger.Warn("capture failed for location", "location", loc.Name, "error", err)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		r.metrics.CaptureRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("capture sweep interrupted: %w", err)
	}

	elapsed := time.Since(start)
	r.metrics.CaptureDuration.Observe(elapsed.Seconds())

	if n := failed.Load(); n > 0 {
		r.metrics.CaptureRuns.WithLabelValues("error").Inc()
		r.logger.Warn("capture sweep finished with failures",
			"locations", len(locs), "failed", n, "duration", elapsed)
		return fmt.Errorf("capture failed for %d of %d locations", n, len(locs))
	}

	r.metrics.CaptureRuns.WithLabelValues("success").Inc()
	r.logger.Info("capture sweep complete", "locations", len(locs), "duration", elapsed)
	return nil
}
