package sweep

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingExpirer struct {
	calls atomic.Int64
	err   error
}

func (c *countingExpirer) ExpireHolds(_ context.Context, _ time.Time) (int, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestWorkerSweepsOnInterval(t *testing.T) {
	t.Parallel()

	expirer := &countingExpirer{}
	worker := NewWorker(slog.Default(), expirer, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	err := worker.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if got := expirer.calls.Load(); got < 2 {
		t.Fatalf("expected repeated sweeps, got %d", got)
	}
}

func TestWorkerKeepsRunningAfterSweepFailure(t *testing.T) {
	t.Parallel()

	expirer := &countingExpirer{err: errors.New("db down")}
	worker := NewWorker(slog.Default(), expirer, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_ = worker.Run(ctx)
	if got := expirer.calls.Load(); got < 2 {
		t.Fatalf("expected worker to retry after failure, got %d sweeps", got)
	}
}

func TestNewWorkerDefaultsInterval(t *testing.T) {
	t.Parallel()

	worker := NewWorker(slog.Default(), &countingExpirer{}, 0)
	if worker.interval != time.Minute {
		t.Fatalf("expected default interval of 1m, got %s", worker.interval)
	}
}
