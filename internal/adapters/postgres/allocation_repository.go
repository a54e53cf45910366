package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
)

type allocationRepository struct {
	db *gorm.DB
}

// Finalize reclassifies a pending hold into a permanent allocation in one
// transaction: status swap, allocation insert, and lot-item copies commit
// together. Lot supply is not touched; the hold already deducted it.
// Expiry is rechecked here under the row lock, so a hold past its TTL fails
// even when the background sweep has not reached it yet.
func (r *allocationRepository) Finalize(ctx context.Context, reservationID uuid.UUID, approvedBy string, at time.Time) (domain.Allocation, error) {
	var alloc domain.Allocation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res reservationModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reservation_id = ?", reservationID).
			Take(&res).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		switch res.Status {
		case domain.ReservationStatusFinalized:
			return domain.ErrAlreadyFinalized
		case domain.ReservationStatusExpired, domain.ReservationStatusCancelled:
			return domain.ErrReservationNotPending
		}
		if !res.ExpiresAt.After(at) {
			return domain.ErrReservationExpired
		}

		result := tx.Model(&reservationModel{}).
			Where("reservation_id = ? AND status = ?", reservationID, domain.ReservationStatusPending).
			Updates(map[string]any{"status": domain.ReservationStatusFinalized, "updated_at": at})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrReservationNotPending
		}

		var itemRecs []reservationLotItemModel
		if err := tx.Where("reservation_id = ?", reservationID).
			Order("lot_id ASC").
			Find(&itemRecs).Error; err != nil {
			return err
		}

		var units int64
		allocItems := make([]allocationLotItemModel, 0, len(itemRecs))
		allocationID := uuid.New()
		for _, item := range itemRecs {
			units += item.UnitsDrawn
			allocItems = append(allocItems, allocationLotItemModel{
				AllocationID: allocationID,
				LotID:        item.LotID,
				UnitsDrawn:   item.UnitsDrawn,
			})
		}

		resID := res.ReservationID
		rec := allocationModel{
			AllocationID:  allocationID,
			DealID:        res.DealID,
			InvestorID:    res.InvestorID,
			ReservationID: &resID,
			Units:         units,
			UnitPrice:     res.ProposedUnitPrice,
			ApprovedBy:    approvedBy,
			ApprovedAt:    at,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		if err := tx.Create(&allocItems).Error; err != nil {
			return err
		}

		// Re-assert exhausted status on fully drawn lots; the hold already set
		// it, but finalize owns the final word on touched lots.
		lotIDs := make([]uuid.UUID, 0, len(itemRecs))
		for _, item := range itemRecs {
			lotIDs = append(lotIDs, item.LotID)
		}
		if err := tx.Model(&shareLotModel{}).
			Where("lot_id IN ? AND units_remaining = 0", lotIDs).
			Updates(map[string]any{"status": domain.LotStatusExhausted, "updated_at": at}).Error; err != nil {
			return err
		}

		alloc = domain.Allocation{
			AllocationID:  allocationID,
			DealID:        rec.DealID,
			InvestorID:    rec.InvestorID,
			ReservationID: &resID,
			Units:         units,
			UnitPrice:     rec.UnitPrice,
			ApprovedBy:    approvedBy,
			ApprovedAt:    at,
		}
		return nil
	})
	if err != nil {
		return domain.Allocation{}, err
	}
	return alloc, nil
}

func (r *allocationRepository) GetByID(ctx context.Context, allocationID uuid.UUID) (domain.Allocation, error) {
	var rec allocationModel
	if err := r.db.WithContext(ctx).
		Where("allocation_id = ?", allocationID).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Allocation{}, domain.ErrNotFound
		}
		return domain.Allocation{}, err
	}
	return toAllocationDomain(rec), nil
}

func (r *allocationRepository) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]domain.Allocation, error) {
	var recs []allocationModel
	if err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("approved_at ASC, allocation_id ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Allocation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toAllocationDomain(rec))
	}
	return out, nil
}

func (r *allocationRepository) ListItems(ctx context.Context, allocationID uuid.UUID) ([]domain.AllocationLotItem, error) {
	var recs []allocationLotItemModel
	if err := r.db.WithContext(ctx).
		Where("allocation_id = ?", allocationID).
		Order("lot_id ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	items := make([]domain.AllocationLotItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, domain.AllocationLotItem{
			AllocationID: rec.AllocationID,
			LotID:        rec.LotID,
			UnitsDrawn:   rec.UnitsDrawn,
		})
	}
	return items, nil
}

func toAllocationDomain(rec allocationModel) domain.Allocation {
	return domain.Allocation{
		AllocationID:  rec.AllocationID,
		DealID:        rec.DealID,
		InvestorID:    rec.InvestorID,
		ReservationID: rec.ReservationID,
		Units:         rec.Units,
		UnitPrice:     rec.UnitPrice,
		ApprovedBy:    rec.ApprovedBy,
		ApprovedAt:    rec.ApprovedAt,
	}
}
