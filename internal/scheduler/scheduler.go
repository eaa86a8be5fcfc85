// Package scheduler wires up the cron job that triggers the fetch-and-import
// pipeline at its configured time of day.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Runner is the unit of work the scheduler fires, normally the pipeline.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler owns the cron loop. A cycle that fails is logged and the daemon
// keeps running; the next tick is the retry.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string // standard cron spec, e.g. "30 22 * * *"
	logger *slog.Logger
}

// New creates a scheduler firing the runner on the given cron spec.
func New(runner Runner, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		spec:   spec,
		logger: logger,
	}
}

// Run registers the job, starts the cron loop, and blocks until ctx is
// cancelled. Returns nil on graceful shutdown.
func (s *Scheduler) Run(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.runner.Run(ctx); err != nil {
			s.logger.Error("pipeline run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec)

	<-ctx.Done()

	s.logger.Info("shutting down scheduler")
	// Wait for an in-flight run to finish before returning.
	<-s.cron.Stop().Done()
	return nil
}
