package contracts

import (
	"encoding/json"
	"time"
)

const (
	EventTypeLotAdded            = "inventory.lot_added.v1"
	EventTypeHoldPlaced          = "inventory.hold_placed.v1"
	EventTypeHoldReleased        = "inventory.hold_released.v1"
	EventTypeAllocationFinalized = "inventory.allocation_finalized.v1"
)

type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	PartitionKey  string          `json:"partition_key"`
	SourceService string          `json:"source_service"`
	TraceID       string          `json:"trace_id"`
	SchemaVersion string          `json:"schema_version"`
	Data          json.RawMessage `json:"data"`
}

type LotAddedPayload struct {
	LotID      string `json:"lot_id"`
	DealID     string `json:"deal_id"`
	SourceID   string `json:"source_id"`
	UnitsTotal int64  `json:"units_total"`
	UnitCost   string `json:"unit_cost"`
	Currency   string `json:"currency"`
	AcquiredAt string `json:"acquired_at"`
}

type HoldPlacedPayload struct {
	ReservationID  string `json:"reservation_id"`
	DealID         string `json:"deal_id"`
	InvestorID     string `json:"investor_id"`
	RequestedUnits int64  `json:"requested_units"`
	UnitPrice      string `json:"unit_price"`
	ExpiresAt      string `json:"expires_at"`
	LotCount       int    `json:"lot_count"`
}

type HoldReleasedPayload struct {
	ReservationID string `json:"reservation_id"`
	DealID        string `json:"deal_id"`
	Reason        string `json:"reason"`
	ReleasedAt    string `json:"released_at"`
}

type AllocationFinalizedPayload struct {
	AllocationID  string `json:"allocation_id"`
	ReservationID string `json:"reservation_id"`
	DealID        string `json:"deal_id"`
	InvestorID    string `json:"investor_id"`
	Units         int64  `json:"units"`
	UnitPrice     string `json:"unit_price"`
	ApprovedBy    string `json:"approved_by"`
	ApprovedAt    string `json:"approved_at"`
}
