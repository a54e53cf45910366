package application

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
)

// GetSummary answers the deal-level inventory view, computed on demand from
// persisted state. Nothing is cached and nothing is mutated.
func (s *Service) GetSummary(ctx context.Context, actor Actor, dealID uuid.UUID) (domain.InventorySummary, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.InventorySummary{}, domain.ErrUnauthorized
	}
	if dealID == uuid.Nil {
		return domain.InventorySummary{}, domain.ErrInvalidInput
	}
	return s.summaries.Summarize(ctx, dealID, s.nowFn())
}
