package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LotStatusAvailable = "available"
	LotStatusHeld      = "held"
	LotStatusExhausted = "exhausted"
)

// ShareLot is a batch of fractional ownership units acquired from one source
// at one cost basis and acquisition date. UnitsRemaining is the single source
// of truth for supply: holds decrement it eagerly, releases restore it, and
// finalization never touches it again.
type ShareLot struct {
	LotID          uuid.UUID
	DealID         uuid.UUID
	SourceID       string
	UnitsTotal     int64
	UnitsRemaining int64
	UnitCost       decimal.Decimal
	Currency       string
	AcquiredAt     time.Time
	LockupUntil    *time.Time
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LotStatusFor derives lot status from its counters so every writer applies
// the same rule: exhausted iff nothing remains, held once any draw happened.
func LotStatusFor(unitsRemaining, unitsTotal int64) string {
	switch {
	case unitsRemaining == 0:
		return LotStatusExhausted
	case unitsRemaining < unitsTotal:
		return LotStatusHeld
	default:
		return LotStatusAvailable
	}
}

// Drawable reports whether the lot can back a new hold at the given instant.
func (l ShareLot) Drawable(now time.Time) bool {
	if l.UnitsRemaining <= 0 {
		return false
	}
	if l.LockupUntil != nil && l.LockupUntil.After(now) {
		return false
	}
	return true
}
