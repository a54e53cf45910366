package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
)

type summaryRepository struct {
	db *gorm.DB
}

// Summarize aggregates the deal's persisted state on demand. Reserved units
// come from the pending reservations themselves, not from lot deltas, so the
// projection stays a pure read over the other tables.
func (r *summaryRepository) Summarize(ctx context.Context, dealID uuid.UUID, now time.Time) (domain.InventorySummary, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&shareLotModel{}).
		Where("deal_id = ?", dealID).
		Select("COALESCE(SUM(units_total), 0)").
		Scan(&total).Error; err != nil {
		return domain.InventorySummary{}, err
	}

	var reserved int64
	if err := r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("deal_id = ? AND status = ?", dealID, domain.ReservationStatusPending).
		Select("COALESCE(SUM(requested_units), 0)").
		Scan(&reserved).Error; err != nil {
		return domain.InventorySummary{}, err
	}

	var allocated int64
	if err := r.db.WithContext(ctx).Model(&allocationLotItemModel{}).
		Joins("JOIN allocations ON allocations.allocation_id = allocation_lot_items.allocation_id").
		Where("allocations.deal_id = ?", dealID).
		Select("COALESCE(SUM(allocation_lot_items.units_drawn), 0)").
		Scan(&allocated).Error; err != nil {
		return domain.InventorySummary{}, err
	}

	return domain.InventorySummary{
		DealID:         dealID,
		TotalUnits:     total,
		AvailableUnits: total - reserved - allocated,
		ReservedUnits:  reserved,
		AllocatedUnits: allocated,
		CalculatedAt:   now,
	}, nil
}
