package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRun_PreservesSubmissionOrder(t *testing.T) {
	s := New(Config{MaxParallel: 4})

	// Later jobs finish first; results must still be in submission order.
	jobs := make([]Job[int], 8)
	for i := range jobs {
		i := i
		delay := time.Duration(len(jobs)-i) * time.Millisecond
		jobs[i] = func(ctx context.Context) (int, error) {
			time.Sleep(delay)
			return i * 10, nil
		}
	}

	results, err := BatchRun(context.Background(), s, jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))
	for i, r := range results {
		assert.Equal(t, i*10, r, "result %d out of order", i)
	}
}

func TestBatchRun_BoundsConcurrency(t *testing.T) {
	const limit = 2
	s := New(Config{MaxParallel: limit})

	var active, peak int64
	jobs := make([]Job[struct{}], 10)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) (struct{}, error) {
			n := atomic.AddInt64(&active, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt64(&active, -1)
			return struct{}{}, nil
		}
	}

	_, err := BatchRun(context.Background(), s, jobs)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(limit))
}

func TestBatchRun_FailFast(t *testing.T) {
	s := New(Config{MaxParallel: 2})
	boom := errors.New("boom")

	var cancelled atomic.Bool
	jobs := []Job[int]{
		func(ctx context.Context) (int, error) {
			return 0, boom
		},
		func(ctx context.Context) (int, error) {
			select {
			case <-ctx.Done():
				cancelled.Store(true)
				return 0, ctx.Err()
			case <-time.After(time.Second):
				return 1, nil
			}
		},
	}

	_, err := BatchRun(context.Background(), s, jobs)
	require.ErrorIs(t, err, boom)
	assert.True(t, cancelled.Load(), "remaining jobs must observe cancellation")
}

func TestBatchRun_Empty(t *testing.T) {
	s := New(Config{MaxParallel: 2})
	results, err := BatchRun[int](context.Background(), s, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	var calls int
	op := func(ctx context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}

	backoff := Backoff{Base: 2, Unit: time.Millisecond}
	start := time.Now()
	result, err := Retry(context.Background(), op, 2, backoff, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls, "op must run exactly maxRetries+1 times")
	// Cumulative delay is base^0 + base^1 = 3 units.
	assert.GreaterOrEqual(t, elapsed, 3*time.Millisecond)
}

func TestRetry_ExhaustionReturnsFinalError(t *testing.T) {
	final := errors.New("still failing")
	var calls int
	op := func(ctx context.Context) (int, error) {
		calls++
		return 0, final
	}

	_, err := Retry(context.Background(), op, 2, Backoff{Base: 2, Unit: time.Microsecond}, nil)
	assert.ErrorIs(t, err, final)
	assert.Equal(t, 3, calls)
}

func TestRetry_FilterStopsIneligibleErrors(t *testing.T) {
	fatal := errors.New("bad credentials")
	var calls int
	op := func(ctx context.Context) (int, error) {
		calls++
		return 0, fatal
	}
	filter := func(err error) bool { return !errors.Is(err, fatal) }

	_, err := Retry(context.Background(), op, 5, Backoff{Base: 2, Unit: time.Microsecond}, filter)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls, "fatal errors must not be retried")
}

func TestRetry_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	op := func(ctx context.Context) (int, error) {
		cancel()
		return 0, errors.New("transient")
	}

	_, err := Retry(ctx, op, 3, Backoff{Base: 2, Unit: time.Hour}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Base: 2, Unit: time.Second}
	assert.Equal(t, time.Second, b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
	assert.Equal(t, 4*time.Second, b.Delay(2))
}
