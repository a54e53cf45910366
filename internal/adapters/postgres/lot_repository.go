package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
)

type shareLotRepository struct {
	db *gorm.DB
}

func (r *shareLotRepository) Create(ctx context.Context, lot domain.ShareLot) error {
	rec := toLotModel(lot)
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *shareLotRepository) GetByID(ctx context.Context, lotID uuid.UUID) (domain.ShareLot, error) {
	var rec shareLotModel
	if err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShareLot{}, domain.ErrNotFound
		}
		return domain.ShareLot{}, err
	}
	return toLotDomain(rec), nil
}

// ListByDeal returns the deal's lots in FIFO order. The ordering matches the
// idx_share_lots_deal_fifo index and is the cost-basis attribution contract.
func (r *shareLotRepository) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]domain.ShareLot, error) {
	var recs []shareLotModel
	if err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("acquired_at ASC, lot_id ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	lots := make([]domain.ShareLot, 0, len(recs))
	for _, rec := range recs {
		lots = append(lots, toLotDomain(rec))
	}
	return lots, nil
}

func toLotModel(lot domain.ShareLot) shareLotModel {
	return shareLotModel{
		LotID:          lot.LotID,
		DealID:         lot.DealID,
		SourceID:       lot.SourceID,
		UnitsTotal:     lot.UnitsTotal,
		UnitsRemaining: lot.UnitsRemaining,
		UnitCost:       lot.UnitCost,
		Currency:       lot.Currency,
		AcquiredAt:     lot.AcquiredAt,
		LockupUntil:    lot.LockupUntil,
		Status:         lot.Status,
		CreatedAt:      lot.CreatedAt,
		UpdatedAt:      lot.UpdatedAt,
	}
}

func toLotDomain(rec shareLotModel) domain.ShareLot {
	return domain.ShareLot{
		LotID:          rec.LotID,
		DealID:         rec.DealID,
		SourceID:       rec.SourceID,
		UnitsTotal:     rec.UnitsTotal,
		UnitsRemaining: rec.UnitsRemaining,
		UnitCost:       rec.UnitCost,
		Currency:       rec.Currency,
		AcquiredAt:     rec.AcquiredAt,
		LockupUntil:    rec.LockupUntil,
		Status:         rec.Status,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}
