package ports

import (
	"context"
	"time"
)

// IdempotencyRecord is the stored outcome of a keyed request. A record with an
// empty body is a reservation still in flight.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
}

// IdempotencyStore deduplicates retried mutating requests. Reserve must be
// first-writer-wins so two deliveries of the same key cannot both execute.
type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
}
