package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ReservationStatusPending   = "pending"
	ReservationStatusExpired   = "expired"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusFinalized = "finalized"
)

// Release reasons are the two terminal statuses a hold can be released into.
const (
	ReleaseReasonCancelled = ReservationStatusCancelled
	ReleaseReasonExpired   = ReservationStatusExpired
)

// Reservation is a time-boxed soft commitment of units pending approval.
// It transitions exactly once out of pending; releasing restores lot supply,
// finalizing converts it into an Allocation without touching supply.
type Reservation struct {
	ReservationID     uuid.UUID
	DealID            uuid.UUID
	InvestorID        string
	RequestedUnits    int64
	ProposedUnitPrice decimal.Decimal
	Status            string
	ExpiresAt         time.Time
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ReservationLotItem records exactly which lot backs how many units of a
// reservation. Items are immutable once written.
type ReservationLotItem struct {
	ReservationID uuid.UUID
	LotID         uuid.UUID
	UnitsDrawn    int64
}

// Expired reports whether the hold's TTL has elapsed at the given instant.
// Finalization rechecks this lazily so a delayed sweep can never oversell.
func (r Reservation) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// ValidReleaseReason guards the release transition against arbitrary statuses.
func ValidReleaseReason(reason string) bool {
	return reason == ReleaseReasonCancelled || reason == ReleaseReasonExpired
}
