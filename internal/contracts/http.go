package contracts

import "time"

// Request and response DTOs for the /inventory/v1 HTTP surface. Money fields
// travel as decimal strings to avoid float drift across service boundaries.

type AddLotRequest struct {
	SourceID    string     `json:"source_id"`
	UnitsTotal  int64      `json:"units_total"`
	UnitCost    string     `json:"unit_cost"`
	Currency    string     `json:"currency"`
	AcquiredAt  time.Time  `json:"acquired_at"`
	LockupUntil *time.Time `json:"lockup_until,omitempty"`
}

type PlaceHoldRequest struct {
	InvestorID        string `json:"investor_id"`
	RequestedUnits    int64  `json:"requested_units"`
	ProposedUnitPrice string `json:"proposed_unit_price"`
	HoldMinutes       int    `json:"hold_minutes"`
}

type LotResponse struct {
	LotID          string     `json:"lot_id"`
	DealID         string     `json:"deal_id"`
	SourceID       string     `json:"source_id"`
	UnitsTotal     int64      `json:"units_total"`
	UnitsRemaining int64      `json:"units_remaining"`
	UnitCost       string     `json:"unit_cost"`
	Currency       string     `json:"currency"`
	AcquiredAt     time.Time  `json:"acquired_at"`
	LockupUntil    *time.Time `json:"lockup_until,omitempty"`
	Status         string     `json:"status"`
}

type LotItemResponse struct {
	LotID      string `json:"lot_id"`
	UnitsDrawn int64  `json:"units_drawn"`
}

type ReservationResponse struct {
	ReservationID     string            `json:"reservation_id"`
	DealID            string            `json:"deal_id"`
	InvestorID        string            `json:"investor_id"`
	RequestedUnits    int64             `json:"requested_units"`
	ProposedUnitPrice string            `json:"proposed_unit_price"`
	Status            string            `json:"status"`
	ExpiresAt         time.Time         `json:"expires_at"`
	CreatedBy         string            `json:"created_by"`
	CreatedAt         time.Time         `json:"created_at"`
	LotItems          []LotItemResponse `json:"lot_items,omitempty"`
}

type AllocationResponse struct {
	AllocationID  string            `json:"allocation_id"`
	DealID        string            `json:"deal_id"`
	InvestorID    string            `json:"investor_id"`
	ReservationID string            `json:"reservation_id,omitempty"`
	Units         int64             `json:"units"`
	UnitPrice     string            `json:"unit_price"`
	ApprovedBy    string            `json:"approved_by"`
	ApprovedAt    time.Time         `json:"approved_at"`
	LotItems      []LotItemResponse `json:"lot_items,omitempty"`
}

type SummaryResponse struct {
	DealID         string    `json:"deal_id"`
	TotalUnits     int64     `json:"total_units"`
	AvailableUnits int64     `json:"available_units"`
	ReservedUnits  int64     `json:"reserved_units"`
	AllocatedUnits int64     `json:"allocated_units"`
	CalculatedAt   time.Time `json:"calculated_at"`
}
