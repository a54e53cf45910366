package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
)

// ShareLotRepository is the source of truth for unit supply.
type ShareLotRepository interface {
	Create(ctx context.Context, lot domain.ShareLot) error
	GetByID(ctx context.Context, lotID uuid.UUID) (domain.ShareLot, error)
	// ListByDeal returns every lot of the deal in FIFO order
	// (acquired_at ascending, lot id ascending).
	ListByDeal(ctx context.Context, dealID uuid.UUID) ([]domain.ShareLot, error)
}

// ReservationRepository owns the per-deal transaction boundary for hold
// placement and release. Implementations must serialize all supply mutations
// of one deal so a stale availability check can never be committed.
type ReservationRepository interface {
	// PlaceHold draws against the deal's drawable lots in FIFO order inside
	// one atomic unit: lot decrements, the pending reservation row, and its
	// lot items commit together or not at all. Insufficient supply returns
	// domain.ErrInsufficientInventory with no state touched.
	PlaceHold(ctx context.Context, res domain.Reservation) (domain.Reservation, []domain.ReservationLotItem, error)
	GetByID(ctx context.Context, reservationID uuid.UUID) (domain.Reservation, error)
	ListItems(ctx context.Context, reservationID uuid.UUID) ([]domain.ReservationLotItem, error)
	// ListExpired returns pending reservations whose TTL elapsed at now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error)
	// Release compare-and-swaps status pending -> reason and restores the
	// drawn units to every referenced lot in the same transaction. A hold
	// that already left pending returns domain.ErrReservationNotPending.
	Release(ctx context.Context, reservationID uuid.UUID, reason string, at time.Time) error
}

// AllocationRepository converts still-valid reservations into immutable
// allocations and serves the allocation read surface.
type AllocationRepository interface {
	// Finalize compare-and-swaps the reservation pending -> finalized, copies
	// its lot items into allocation lot items unchanged, and inserts the
	// allocation as one atomic unit, with no change to lot supply. Races lose
	// cleanly: domain.ErrAlreadyFinalized on a finalized hold,
	// domain.ErrReservationNotPending on a released one, and
	// domain.ErrReservationExpired when the TTL elapsed before the swap.
	Finalize(ctx context.Context, reservationID uuid.UUID, approvedBy string, at time.Time) (domain.Allocation, error)
	GetByID(ctx context.Context, allocationID uuid.UUID) (domain.Allocation, error)
	ListByDeal(ctx context.Context, dealID uuid.UUID) ([]domain.Allocation, error)
	ListItems(ctx context.Context, allocationID uuid.UUID) ([]domain.AllocationLotItem, error)
}

// SummaryRepository computes the read-side aggregation on demand from
// persisted state. It never mutates and never caches.
type SummaryRepository interface {
	Summarize(ctx context.Context, dealID uuid.UUID, now time.Time) (domain.InventorySummary, error)
}

// OutboxRecord is one event awaiting publication to the platform bus.
type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
	RetryCount   int
}

// OutboxRepository decouples transactional writes from broker delivery.
type OutboxRepository interface {
	Enqueue(ctx context.Context, record OutboxRecord) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken string, lastError string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken string, lastError string, at time.Time) error
}
