package postgres

import (
	"gorm.io/gorm"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/ports"
)

// Repositories bundles every Postgres-backed port implementation over one
// shared connection pool.
type Repositories struct {
	Lots         ports.ShareLotRepository
	Reservations ports.ReservationRepository
	Allocations  ports.AllocationRepository
	Summaries    ports.SummaryRepository
	Outbox       ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Lots:         &shareLotRepository{db: db},
		Reservations: &reservationRepository{db: db},
		Allocations:  &allocationRepository{db: db},
		Summaries:    &summaryRepository{db: db},
		Outbox:       &outboxRepository{db: db},
	}
}
