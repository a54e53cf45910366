package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type shareLotModel struct {
	LotID          uuid.UUID       `gorm:"column:lot_id;type:uuid;primaryKey"`
	DealID         uuid.UUID       `gorm:"column:deal_id;type:uuid"`
	SourceID       string          `gorm:"column:source_id"`
	UnitsTotal     int64           `gorm:"column:units_total"`
	UnitsRemaining int64           `gorm:"column:units_remaining"`
	UnitCost       decimal.Decimal `gorm:"column:unit_cost;type:numeric(20,6)"`
	Currency       string          `gorm:"column:currency;type:char(3)"`
	AcquiredAt     time.Time       `gorm:"column:acquired_at"`
	LockupUntil    *time.Time      `gorm:"column:lockup_until"`
	Status         string          `gorm:"column:status"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (shareLotModel) TableName() string { return "share_lots" }

type reservationModel struct {
	ReservationID     uuid.UUID       `gorm:"column:reservation_id;type:uuid;primaryKey"`
	DealID            uuid.UUID       `gorm:"column:deal_id;type:uuid"`
	InvestorID        string          `gorm:"column:investor_id"`
	RequestedUnits    int64           `gorm:"column:requested_units"`
	ProposedUnitPrice decimal.Decimal `gorm:"column:proposed_unit_price;type:numeric(20,6)"`
	Status            string          `gorm:"column:status"`
	ExpiresAt         time.Time       `gorm:"column:expires_at"`
	CreatedBy         string          `gorm:"column:created_by"`
	CreatedAt         time.Time       `gorm:"column:created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at"`
}

func (reservationModel) TableName() string { return "reservations" }

type reservationLotItemModel struct {
	ReservationID uuid.UUID `gorm:"column:reservation_id;type:uuid;primaryKey"`
	LotID         uuid.UUID `gorm:"column:lot_id;type:uuid;primaryKey"`
	UnitsDrawn    int64     `gorm:"column:units_drawn"`
}

func (reservationLotItemModel) TableName() string { return "reservation_lot_items" }

type allocationModel struct {
	AllocationID  uuid.UUID       `gorm:"column:allocation_id;type:uuid;primaryKey"`
	DealID        uuid.UUID       `gorm:"column:deal_id;type:uuid"`
	InvestorID    string          `gorm:"column:investor_id"`
	ReservationID *uuid.UUID      `gorm:"column:reservation_id;type:uuid"`
	Units         int64           `gorm:"column:units"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(20,6)"`
	ApprovedBy    string          `gorm:"column:approved_by"`
	ApprovedAt    time.Time       `gorm:"column:approved_at"`
}

func (allocationModel) TableName() string { return "allocations" }

type allocationLotItemModel struct {
	AllocationID uuid.UUID `gorm:"column:allocation_id;type:uuid;primaryKey"`
	LotID        uuid.UUID `gorm:"column:lot_id;type:uuid;primaryKey"`
	UnitsDrawn   int64     `gorm:"column:units_drawn"`
}

func (allocationLotItemModel) TableName() string { return "allocation_lot_items" }

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (outboxModel) TableName() string { return "inventory_outbox" }
