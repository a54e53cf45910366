package sweep

import (
	"context"
	"log/slog"
	"time"
)

// HoldExpirer is the slice of the application service the sweeper drives.
type HoldExpirer interface {
	ExpireHolds(ctx context.Context, now time.Time) (int, error)
}

// Worker periodically reclaims supply from holds whose TTL elapsed. It is the
// eager half of expiry enforcement; finalize's lazy recheck is the other, so
// a failed or delayed sweep can only postpone reclamation, never oversell.
type Worker struct {
	logger   *slog.Logger
	expirer  HoldExpirer
	interval time.Duration
	nowFn    func() time.Time
}

func NewWorker(logger *slog.Logger, expirer HoldExpirer, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{
		logger:   logger,
		expirer:  expirer,
		interval: interval,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// Run executes the periodic expiry sweep until context cancellation.
// Iteration failures are logged and retried on the next tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		released, err := w.expirer.ExpireHolds(ctx, w.nowFn())
		if err != nil {
			w.logger.ErrorContext(ctx, "expiry sweep failed",
				"module", "sweep.worker",
				"layer", "adapter",
				"operation", "expire_holds",
				"outcome", "failure",
				"released_count", released,
				"error", err,
			)
		} else if released > 0 {
			w.logger.InfoContext(ctx, "expiry sweep completed",
				"module", "sweep.worker",
				"layer", "adapter",
				"operation", "expire_holds",
				"outcome", "success",
				"released_count", released,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
