package sched

import (
	"context"
	"math"
	"time"
)

// Backoff computes exponential retry delays: Unit * Base^attempt, with
// attempt counted from 0.
type Backoff struct {
	Base float64
	Unit time.Duration
}

// DefaultBackoff doubles a one-second delay on every retry.
var DefaultBackoff = Backoff{Base: 2, Unit: time.Second}

// Delay returns the delay before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	unit := b.Unit
	if unit <= 0 {
		unit = time.Second
	}
	base := b.Base
	if base <= 0 {
		base = 2
	}
	return time.Duration(float64(unit) * math.Pow(base, float64(attempt)))
}

// RetryFilter decides whether a failure is worth retrying. Configuration
// and authentication failures must never pass the filter.
type RetryFilter func(error) bool

// Retry invokes op, retrying up to maxRetries more times on failures the
// filter accepts, sleeping backoff.Delay(attempt) between attempts. The
// final failure is returned after exhaustion. A nil filter retries every
// failure.
func Retry[T any](ctx context.Context, op func(context.Context) (T, error), maxRetries int, backoff Backoff, filter RetryFilter) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff.Delay(attempt-1)); err != nil {
				return zero, err
			}
		}
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if filter != nil && !filter(err) {
			break
		}
	}
	return zero, lastErr
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
