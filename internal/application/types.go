package application

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/ports"
)

// Config carries business tuning for the engine. Zero values are replaced by
// defaults in NewService so partially wired tests stay valid.
type Config struct {
	ServiceName string

	// HoldWindowMin/Max bound hold_minutes for investor-driven holds;
	// HoldWindowStaffMax is the longer cap for staff-driven approval flows.
	HoldWindowMin      time.Duration
	HoldWindowMax      time.Duration
	HoldWindowStaffMax time.Duration

	SweepBatchSize int
	IdempotencyTTL time.Duration
}

// Actor identifies the authenticated caller. Authentication itself happens at
// the mesh edge; the engine only trusts and threads these fields through.
type Actor struct {
	SubjectID      string
	Role           string
	RequestID      string
	IdempotencyKey string
}

// Staff roles may use the extended hold window for approval workflows.
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

func (a Actor) staff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

type AddLotInput struct {
	DealID      uuid.UUID
	SourceID    string
	UnitsTotal  int64
	UnitCost    decimal.Decimal
	Currency    string
	AcquiredAt  time.Time
	LockupUntil *time.Time
}

type PlaceHoldInput struct {
	DealID            uuid.UUID
	InvestorID        string
	RequestedUnits    int64
	ProposedUnitPrice decimal.Decimal
	HoldMinutes       int
}

type ReleaseInput struct {
	ReservationID uuid.UUID
	Reason        string
}

type FinalizeInput struct {
	ReservationID uuid.UUID
}

// Service orchestrates the engine's use-cases over the repository ports.
type Service struct {
	cfg    Config
	logger *slog.Logger

	lots         ports.ShareLotRepository
	reservations ports.ReservationRepository
	allocations  ports.AllocationRepository
	summaries    ports.SummaryRepository
	outbox       ports.OutboxRepository
	idempotency  ports.IdempotencyStore
	audit        ports.AuditSink
	notifier     ports.Notifier

	nowFn func() time.Time
}

type Dependencies struct {
	Config Config
	Logger *slog.Logger

	Lots         ports.ShareLotRepository
	Reservations ports.ReservationRepository
	Allocations  ports.AllocationRepository
	Summaries    ports.SummaryRepository
	Outbox       ports.OutboxRepository
	Idempotency  ports.IdempotencyStore
	Audit        ports.AuditSink
	Notifier     ports.Notifier
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "inventory-engine"
	}
	if cfg.HoldWindowMin <= 0 {
		cfg.HoldWindowMin = 5 * time.Minute
	}
	if cfg.HoldWindowMax <= 0 {
		cfg.HoldWindowMax = 120 * time.Minute
	}
	if cfg.HoldWindowStaffMax <= 0 {
		cfg.HoldWindowStaffMax = 2880 * time.Minute
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 100
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:          cfg,
		logger:       logger.With("service", cfg.ServiceName, "module", "application", "layer", "application"),
		lots:         deps.Lots,
		reservations: deps.Reservations,
		allocations:  deps.Allocations,
		summaries:    deps.Summaries,
		outbox:       deps.Outbox,
		idempotency:  deps.Idempotency,
		audit:        deps.Audit,
		notifier:     deps.Notifier,
		nowFn:        func() time.Time { return time.Now().UTC() },
	}
}
