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

type reservationRepository struct {
	db *gorm.DB
}

// PlaceHold runs the whole hold placement inside one transaction that locks
// the deal's lot rows FOR UPDATE in deterministic order. Locking before the
// availability read is what closes the check-then-decrement race: two holds
// on the same deal serialize here, and the second replans against the supply
// the first one left behind.
func (r *reservationRepository) PlaceHold(ctx context.Context, res domain.Reservation) (domain.Reservation, []domain.ReservationLotItem, error) {
	var items []domain.ReservationLotItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lotRecs []shareLotModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("deal_id = ?", res.DealID).
			Order("acquired_at ASC, lot_id ASC").
			Find(&lotRecs).Error; err != nil {
			return err
		}

		lots := make([]domain.ShareLot, 0, len(lotRecs))
		for _, rec := range lotRecs {
			lots = append(lots, toLotDomain(rec))
		}
		draws, err := domain.PlanDraw(lots, res.RequestedUnits, res.CreatedAt)
		if err != nil {
			return err
		}

		for _, draw := range draws {
			result := tx.Model(&shareLotModel{}).
				Where("lot_id = ? AND units_remaining >= ?", draw.LotID, draw.Units).
				Updates(map[string]any{
					"units_remaining": gorm.Expr("units_remaining - ?", draw.Units),
					"status": gorm.Expr(
						"CASE WHEN units_remaining - ? = 0 THEN ? ELSE ? END",
						draw.Units, domain.LotStatusExhausted, domain.LotStatusHeld,
					),
					"updated_at": res.CreatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Unreachable while the row lock is held; kept as a hard stop
				// against ever committing a negative balance.
				return domain.ErrConflict
			}
		}

		rec := reservationModel{
			ReservationID:     res.ReservationID,
			DealID:            res.DealID,
			InvestorID:        res.InvestorID,
			RequestedUnits:    res.RequestedUnits,
			ProposedUnitPrice: res.ProposedUnitPrice,
			Status:            domain.ReservationStatusPending,
			ExpiresAt:         res.ExpiresAt,
			CreatedBy:         res.CreatedBy,
			CreatedAt:         res.CreatedAt,
			UpdatedAt:         res.UpdatedAt,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		itemRecs := make([]reservationLotItemModel, 0, len(draws))
		items = make([]domain.ReservationLotItem, 0, len(draws))
		for _, draw := range draws {
			itemRecs = append(itemRecs, reservationLotItemModel{
				ReservationID: res.ReservationID,
				LotID:         draw.LotID,
				UnitsDrawn:    draw.Units,
			})
			items = append(items, domain.ReservationLotItem{
				ReservationID: res.ReservationID,
				LotID:         draw.LotID,
				UnitsDrawn:    draw.Units,
			})
		}
		return tx.Create(&itemRecs).Error
	})
	if err != nil {
		return domain.Reservation{}, nil, err
	}
	return res, items, nil
}

func (r *reservationRepository) GetByID(ctx context.Context, reservationID uuid.UUID) (domain.Reservation, error) {
	var rec reservationModel
	if err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}
	return toReservationDomain(rec), nil
}

func (r *reservationRepository) ListItems(ctx context.Context, reservationID uuid.UUID) ([]domain.ReservationLotItem, error) {
	var recs []reservationLotItemModel
	if err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("lot_id ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	items := make([]domain.ReservationLotItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, domain.ReservationLotItem{
			ReservationID: rec.ReservationID,
			LotID:         rec.LotID,
			UnitsDrawn:    rec.UnitsDrawn,
		})
	}
	return items, nil
}

func (r *reservationRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	var recs []reservationModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", domain.ReservationStatusPending, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toReservationDomain(rec))
	}
	return out, nil
}

// Release restores the hold's drawn units and moves it to a terminal status.
// The pending -> reason transition is a guarded UPDATE under a row lock, so a
// release racing a finalize can never both apply.
func (r *reservationRepository) Release(ctx context.Context, reservationID uuid.UUID, reason string, at time.Time) error {
	if !domain.ValidReleaseReason(reason) {
		return domain.ErrInvalidInput
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec reservationModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reservation_id = ?", reservationID).
			Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if rec.Status != domain.ReservationStatusPending {
			return domain.ErrReservationNotPending
		}

		result := tx.Model(&reservationModel{}).
			Where("reservation_id = ? AND status = ?", reservationID, domain.ReservationStatusPending).
			Updates(map[string]any{"status": reason, "updated_at": at})
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
		for _, item := range itemRecs {
			if err := tx.Model(&shareLotModel{}).
				Where("lot_id = ?", item.LotID).
				Updates(map[string]any{
					"units_remaining": gorm.Expr("units_remaining + ?", item.UnitsDrawn),
					"status": gorm.Expr(
						"CASE WHEN units_remaining + ? = units_total THEN ? ELSE ? END",
						item.UnitsDrawn, domain.LotStatusAvailable, domain.LotStatusHeld,
					),
					"updated_at": at,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func toReservationDomain(rec reservationModel) domain.Reservation {
	return domain.Reservation{
		ReservationID:     rec.ReservationID,
		DealID:            rec.DealID,
		InvestorID:        rec.InvestorID,
		RequestedUnits:    rec.RequestedUnits,
		ProposedUnitPrice: rec.ProposedUnitPrice,
		Status:            rec.Status,
		ExpiresAt:         rec.ExpiresAt,
		CreatedBy:         rec.CreatedBy,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}
