// Package sched runs batches of estimation jobs with bounded concurrency
// and provides the retry-with-backoff primitive used around provider calls.
//
// Batches are fail-fast: partial results are not independently useful
// downstream, so the first job failure cancels the rest and propagates.
// Results always preserve submission order regardless of completion order.
package sched

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Scheduler is an explicitly owned execution context for batch runs.
// There is no ambient singleton: every component that fans out work holds
// the scheduler it was constructed with.
type Scheduler struct {
	maxParallel int
	logger      *slog.Logger
}

// Config configures a Scheduler.
type Config struct {
	// MaxParallel bounds concurrent jobs per batch. Values < 1 mean 1.
	MaxParallel int

	// Logger receives batch diagnostics. Nil disables them.
	Logger *slog.Logger
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{maxParallel: cfg.MaxParallel, logger: cfg.Logger}
}

// MaxParallel returns the per-batch concurrency bound.
func (s *Scheduler) MaxParallel() int {
	return s.maxParallel
}

// Job is one unit of batch work.
type Job[T any] func(ctx context.Context) (T, error)

// BatchRun executes all jobs concurrently, bounded by the scheduler's
// MaxParallel. The first failure cancels the remaining jobs and is
// returned; on success the results are in submission order.
func BatchRun[T any](ctx context.Context, s *Scheduler, jobs []Job[T]) ([]T, error) {
	results := make([]T, len(jobs))
	batchID := uuid.NewString()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			r, err := job(gctx)
			if err != nil {
				s.logger.Debug("batch job failed",
					"batch", batchID, "job", i, "error", err)
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
