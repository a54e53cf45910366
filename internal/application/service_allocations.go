package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
)

// AllocationResult pairs an allocation with its lot items for read responses.
type AllocationResult struct {
	Allocation domain.Allocation          `json:"allocation"`
	LotItems   []domain.AllocationLotItem `json:"lot_items"`
}

// Finalize converts a still-valid pending reservation into a permanent
// allocation. The hold's lot deductions are reclassified, not re-applied:
// lot supply does not move here. Expiry is rechecked at the moment of use so
// a missed sweep can only delay reclaiming supply, never oversell it.
func (s *Service) Finalize(ctx context.Context, actor Actor, input FinalizeInput) (domain.Allocation, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.Allocation{}, domain.ErrUnauthorized
	}
	if !actor.staff() {
		return domain.Allocation{}, domain.ErrUnauthorized
	}
	if input.ReservationID == uuid.Nil {
		return domain.Allocation{}, domain.ErrInvalidInput
	}

	now := s.nowFn()
	alloc, err := s.allocations.Finalize(ctx, input.ReservationID, actor.SubjectID, now)
	if err != nil {
		s.logger.WarnContext(ctx, "finalize rejected",
			"operation", "finalize",
			"outcome", "failure",
			"reservation_id", input.ReservationID.String(),
			"error", err.Error(),
		)
		return domain.Allocation{}, err
	}

	s.emitAllocationFinalized(ctx, alloc, actor.RequestID)
	s.recordAudit(ctx, "inventory.allocation_finalized", alloc.AllocationID.String(), map[string]string{
		"deal_id":        alloc.DealID.String(),
		"investor_id":    alloc.InvestorID,
		"reservation_id": input.ReservationID.String(),
		"units":          itoa(alloc.Units),
	})
	s.notify(ctx, alloc.InvestorID, fmt.Sprintf("allocation of %d units on deal %s confirmed", alloc.Units, alloc.DealID))

	s.logger.InfoContext(ctx, "allocation finalized",
		"operation", "finalize",
		"outcome", "success",
		"deal_id", alloc.DealID.String(),
		"reservation_id", input.ReservationID.String(),
		"allocation_id", alloc.AllocationID.String(),
		"units", alloc.Units,
	)
	return alloc, nil
}

// GetAllocation returns one allocation and its lot items.
func (s *Service) GetAllocation(ctx context.Context, actor Actor, allocationID uuid.UUID) (AllocationResult, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return AllocationResult{}, domain.ErrUnauthorized
	}
	if allocationID == uuid.Nil {
		return AllocationResult{}, domain.ErrInvalidInput
	}
	alloc, err := s.allocations.GetByID(ctx, allocationID)
	if err != nil {
		return AllocationResult{}, err
	}
	items, err := s.allocations.ListItems(ctx, allocationID)
	if err != nil {
		return AllocationResult{}, err
	}
	return AllocationResult{Allocation: alloc, LotItems: items}, nil
}

// ListAllocations returns every allocation of a deal.
func (s *Service) ListAllocations(ctx context.Context, actor Actor, dealID uuid.UUID) ([]domain.Allocation, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return nil, domain.ErrUnauthorized
	}
	if dealID == uuid.Nil {
		return nil, domain.ErrInvalidInput
	}
	return s.allocations.ListByDeal(ctx, dealID)
}
