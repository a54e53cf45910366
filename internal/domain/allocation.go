package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation is the permanent record of units granted to an investor once a
// hold is finalized. It is never updated or deleted by this engine.
type Allocation struct {
	AllocationID  uuid.UUID
	DealID        uuid.UUID
	InvestorID    string
	ReservationID *uuid.UUID
	Units         int64
	UnitPrice     decimal.Decimal
	ApprovedBy    string
	ApprovedAt    time.Time
}

// AllocationLotItem mirrors the reservation's lot items at finalize time,
// unchanged, preserving the cost-basis attribution of the original draw.
type AllocationLotItem struct {
	AllocationID uuid.UUID
	LotID        uuid.UUID
	UnitsDrawn   int64
}

// InventorySummary is the on-demand read-side aggregation for one deal.
type InventorySummary struct {
	DealID         uuid.UUID
	TotalUnits     int64
	AvailableUnits int64
	ReservedUnits  int64
	AllocatedUnits int64
	CalculatedAt   time.Time
}
