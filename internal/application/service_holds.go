package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
)

// HoldResult is the response payload of PlaceHold, also cached verbatim by the
// idempotency store so retried deliveries observe the first outcome.
type HoldResult struct {
	Reservation domain.Reservation          `json:"reservation"`
	LotItems    []domain.ReservationLotItem `json:"lot_items"`
}

// PlaceHold places a time-boxed hold against a deal's supply. The draw is an
// eager deduction: every touched lot's remaining units shrink at hold time,
// inside the per-deal transaction boundary, so concurrent requests cannot
// both pass a stale availability check.
func (s *Service) PlaceHold(ctx context.Context, actor Actor, input PlaceHoldInput) (HoldResult, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return HoldResult{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(actor.IdempotencyKey) == "" {
		return HoldResult{}, domain.ErrIdempotencyRequired
	}
	input.InvestorID = strings.TrimSpace(input.InvestorID)
	if input.DealID == uuid.Nil || input.InvestorID == "" {
		return HoldResult{}, domain.ErrInvalidInput
	}
	if input.RequestedUnits <= 0 || !input.ProposedUnitPrice.IsPositive() {
		return HoldResult{}, domain.ErrInvalidInput
	}
	if err := s.checkHoldWindow(actor, input.HoldMinutes); err != nil {
		return HoldResult{}, err
	}

	requestHash := hashJSON(input)
	if cached, ok, err := s.getIdempotentHold(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return HoldResult{}, err
	} else if ok {
		return cached, nil
	}
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return HoldResult{}, err
	}

	now := s.nowFn()
	res := domain.Reservation{
		ReservationID:     uuid.New(),
		DealID:            input.DealID,
		InvestorID:        input.InvestorID,
		RequestedUnits:    input.RequestedUnits,
		ProposedUnitPrice: input.ProposedUnitPrice,
		Status:            domain.ReservationStatusPending,
		ExpiresAt:         now.Add(time.Duration(input.HoldMinutes) * time.Minute),
		CreatedBy:         actor.SubjectID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	res, items, err := s.reservations.PlaceHold(ctx, res)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientInventory) {
			s.logger.WarnContext(ctx, "hold rejected",
				"operation", "place_hold",
				"outcome", "failure",
				"deal_id", input.DealID.String(),
				"requested_units", input.RequestedUnits,
				"error", err.Error(),
			)
		}
		return HoldResult{}, err
	}

	result := HoldResult{Reservation: res, LotItems: items}
	s.emitHoldPlaced(ctx, res, len(items), actor.RequestID)
	s.recordAudit(ctx, "inventory.hold_placed", res.ReservationID.String(), map[string]string{
		"deal_id":         res.DealID.String(),
		"investor_id":     res.InvestorID,
		"requested_units": itoa(res.RequestedUnits),
	})
	s.notify(ctx, res.CreatedBy, fmt.Sprintf("hold %s placed for %d units on deal %s, expires %s",
		res.ReservationID, res.RequestedUnits, res.DealID, res.ExpiresAt.Format(time.RFC3339)))
	s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 201, result)

	s.logger.InfoContext(ctx, "hold placed",
		"operation", "place_hold",
		"outcome", "success",
		"deal_id", res.DealID.String(),
		"reservation_id", res.ReservationID.String(),
		"requested_units", res.RequestedUnits,
		"lot_count", len(items),
	)
	return result, nil
}

// Release cancels or expires a pending hold, restoring the drawn units to
// every backing lot. The pending -> reason transition is a compare-and-swap,
// so a hold racing with finalize fails cleanly instead of double-applying.
func (s *Service) Release(ctx context.Context, actor Actor, input ReleaseInput) (domain.Reservation, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Reservation{}, domain.ErrUnauthorized
	}
	if input.ReservationID == uuid.Nil || !domain.ValidReleaseReason(input.Reason) {
		return domain.Reservation{}, domain.ErrInvalidInput
	}

	now := s.nowFn()
	if err := s.reservations.Release(ctx, input.ReservationID, input.Reason, now); err != nil {
		return domain.Reservation{}, err
	}
	res, err := s.reservations.GetByID(ctx, input.ReservationID)
	if err != nil {
		return domain.Reservation{}, err
	}

	s.emitHoldReleased(ctx, res, input.Reason, actor.RequestID)
	s.recordAudit(ctx, "inventory.hold_released", res.ReservationID.String(), map[string]string{
		"deal_id": res.DealID.String(),
		"reason":  input.Reason,
	})
	s.logger.InfoContext(ctx, "hold released",
		"operation", "release",
		"outcome", "success",
		"deal_id", res.DealID.String(),
		"reservation_id", res.ReservationID.String(),
		"reason", input.Reason,
	)
	return res, nil
}

// ExpireHolds sweeps pending reservations whose TTL elapsed at now and
// releases each one. The per-hold compare-and-swap makes the sweep idempotent
// and safe to race with finalize: whichever transition commits first wins and
// the loser is skipped.
func (s *Service) ExpireHolds(ctx context.Context, now time.Time) (int, error) {
	released := 0
	for {
		batch, err := s.reservations.ListExpired(ctx, now, s.cfg.SweepBatchSize)
		if err != nil {
			return released, err
		}
		if len(batch) == 0 {
			return released, nil
		}
		progressed := 0
		for _, res := range batch {
			err := s.reservations.Release(ctx, res.ReservationID, domain.ReleaseReasonExpired, now)
			if err != nil {
				if errors.Is(err, domain.ErrReservationNotPending) {
					// Lost the race against finalize or a manual cancel.
					continue
				}
				s.logger.ErrorContext(ctx, "expiry release failed",
					"operation", "expire_holds",
					"outcome", "failure",
					"reservation_id", res.ReservationID.String(),
					"error", err.Error(),
				)
				continue
			}
			released++
			progressed++
			s.emitHoldReleased(ctx, res, domain.ReleaseReasonExpired, "")
		}
		// Stop once the backlog is drained, or when nothing progressed so a
		// persistently failing hold cannot spin this sweep forever.
		if len(batch) < s.cfg.SweepBatchSize || progressed == 0 {
			return released, nil
		}
	}
}

// GetReservation returns one hold and its lot items.
func (s *Service) GetReservation(ctx context.Context, actor Actor, reservationID uuid.UUID) (HoldResult, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return HoldResult{}, domain.ErrUnauthorized
	}
	if reservationID == uuid.Nil {
		return HoldResult{}, domain.ErrInvalidInput
	}
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return HoldResult{}, err
	}
	items, err := s.reservations.ListItems(ctx, reservationID)
	if err != nil {
		return HoldResult{}, err
	}
	return HoldResult{Reservation: res, LotItems: items}, nil
}

func (s *Service) checkHoldWindow(actor Actor, holdMinutes int) error {
	window := time.Duration(holdMinutes) * time.Minute
	if window < s.cfg.HoldWindowMin {
		return domain.ErrInvalidInput
	}
	max := s.cfg.HoldWindowMax
	if actor.staff() {
		max = s.cfg.HoldWindowStaffMax
	}
	if window > max {
		return domain.ErrInvalidInput
	}
	return nil
}

func (s *Service) getIdempotentHold(ctx context.Context, key, requestHash string) (HoldResult, bool, error) {
	if s.idempotency == nil {
		return HoldResult{}, false, nil
	}
	rec, err := s.idempotency.Get(ctx, key, s.nowFn())
	if err != nil || rec == nil {
		return HoldResult{}, false, err
	}
	if rec.RequestHash != requestHash {
		return HoldResult{}, false, domain.ErrIdempotencyConflict
	}
	if len(rec.ResponseBody) == 0 {
		return HoldResult{}, false, nil
	}
	var out HoldResult
	if err := json.Unmarshal(rec.ResponseBody, &out); err != nil {
		return HoldResult{}, false, nil
	}
	return out, true, nil
}

func (s *Service) reserveIdempotency(ctx context.Context, key, requestHash string) error {
	if s.idempotency == nil {
		return nil
	}
	err := s.idempotency.Reserve(ctx, key, requestHash, s.nowFn().Add(s.cfg.IdempotencyTTL))
	if errors.Is(err, domain.ErrConflict) {
		return domain.ErrIdempotencyConflict
	}
	return err
}

func (s *Service) completeIdempotencyJSON(ctx context.Context, key string, code int, payload any) {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return
	}
	b, _ := json.Marshal(payload)
	if err := s.idempotency.Complete(ctx, key, code, b, s.nowFn()); err != nil {
		s.logger.WarnContext(ctx, "idempotency completion failed",
			"operation", "complete_idempotency",
			"outcome", "failure",
			"error", err.Error(),
		)
	}
}
