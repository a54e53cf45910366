package application

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
)

// AddLot registers a new batch of units for a deal. The lot enters with its
// full supply remaining; this is the only operation that creates supply.
func (s *Service) AddLot(ctx context.Context, actor Actor, input AddLotInput) (domain.ShareLot, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.ShareLot{}, domain.ErrUnauthorized
	}
	if !actor.staff() {
		return domain.ShareLot{}, domain.ErrUnauthorized
	}
	input.SourceID = strings.TrimSpace(input.SourceID)
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	if input.DealID == uuid.Nil || input.SourceID == "" || input.AcquiredAt.IsZero() {
		return domain.ShareLot{}, domain.ErrInvalidInput
	}
	if input.UnitsTotal <= 0 || !input.UnitCost.IsPositive() || !validCurrency(input.Currency) {
		return domain.ShareLot{}, domain.ErrInvalidInput
	}

	now := s.nowFn()
	lot := domain.ShareLot{
		LotID:          uuid.New(),
		DealID:         input.DealID,
		SourceID:       input.SourceID,
		UnitsTotal:     input.UnitsTotal,
		UnitsRemaining: input.UnitsTotal,
		UnitCost:       input.UnitCost,
		Currency:       input.Currency,
		AcquiredAt:     input.AcquiredAt.UTC(),
		LockupUntil:    input.LockupUntil,
		Status:         domain.LotStatusAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.lots.Create(ctx, lot); err != nil {
		return domain.ShareLot{}, err
	}

	s.emitLotAdded(ctx, lot, actor.RequestID)
	s.recordAudit(ctx, "inventory.lot_added", lot.LotID.String(), map[string]string{
		"deal_id":     lot.DealID.String(),
		"source_id":   lot.SourceID,
		"units_total": itoa(lot.UnitsTotal),
	})
	s.logger.InfoContext(ctx, "lot added",
		"operation", "add_lot",
		"outcome", "success",
		"deal_id", lot.DealID.String(),
		"lot_id", lot.LotID.String(),
		"units_total", lot.UnitsTotal,
	)
	return lot, nil
}

// ListLots returns every lot of a deal in FIFO order.
func (s *Service) ListLots(ctx context.Context, actor Actor, dealID uuid.UUID) ([]domain.ShareLot, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return nil, domain.ErrUnauthorized
	}
	if dealID == uuid.Nil {
		return nil, domain.ErrInvalidInput
	}
	return s.lots.ListByDeal(ctx, dealID)
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
