// Package scheduler triggers capture sweeps on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// jobTimeout bounds one sweep so a stuck provider cannot pile up ticks.
const jobTimeout = 5 * time.Minute

// Job is the unit of work run on every tick.
type Job interface {
	RunOnce(ctx context.Context) error
}

// Scheduler runs a Job periodically on a gocron scheduler.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Job
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler that runs job once per interval.
func New(job Job, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		job:       job,
		interval:  interval,
		logger:    logger,
	}
}

// Start registers the periodic job and starts the scheduler in the background.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := s.job.RunOnce(ctx); err != nil {
			s.logger.Error("scheduled capture failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule capture job: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("capture scheduler started", "interval_minutes", minutes)
	return nil
}

// Stop halts the scheduler; no new ticks fire after it returns.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
