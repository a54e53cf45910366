package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/contracts"
	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/domain"
	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/ports"
)

// Outbox, audit, and notification emission. All three are fire-and-forget
// from the engine's perspective: failures are logged and never fail the
// business operation that triggered them.

func (s *Service) emitLotAdded(ctx context.Context, lot domain.ShareLot, traceID string) {
	s.enqueueEvent(ctx, contracts.EventTypeLotAdded, lot.DealID.String(), traceID, contracts.LotAddedPayload{
		LotID:      lot.LotID.String(),
		DealID:     lot.DealID.String(),
		SourceID:   lot.SourceID,
		UnitsTotal: lot.UnitsTotal,
		UnitCost:   lot.UnitCost.String(),
		Currency:   lot.Currency,
		AcquiredAt: lot.AcquiredAt.Format(time.RFC3339),
	})
}

func (s *Service) emitHoldPlaced(ctx context.Context, res domain.Reservation, lotCount int, traceID string) {
	s.enqueueEvent(ctx, contracts.EventTypeHoldPlaced, res.DealID.String(), traceID, contracts.HoldPlacedPayload{
		ReservationID:  res.ReservationID.String(),
		DealID:         res.DealID.String(),
		InvestorID:     res.InvestorID,
		RequestedUnits: res.RequestedUnits,
		UnitPrice:      res.ProposedUnitPrice.String(),
		ExpiresAt:      res.ExpiresAt.Format(time.RFC3339),
		LotCount:       lotCount,
	})
}

func (s *Service) emitHoldReleased(ctx context.Context, res domain.Reservation, reason, traceID string) {
	s.enqueueEvent(ctx, contracts.EventTypeHoldReleased, res.DealID.String(), traceID, contracts.HoldReleasedPayload{
		ReservationID: res.ReservationID.String(),
		DealID:        res.DealID.String(),
		Reason:        reason,
		ReleasedAt:    s.nowFn().Format(time.RFC3339),
	})
}

func (s *Service) emitAllocationFinalized(ctx context.Context, alloc domain.Allocation, traceID string) {
	reservationID := ""
	if alloc.ReservationID != nil {
		reservationID = alloc.ReservationID.String()
	}
	s.enqueueEvent(ctx, contracts.EventTypeAllocationFinalized, alloc.DealID.String(), traceID, contracts.AllocationFinalizedPayload{
		AllocationID:  alloc.AllocationID.String(),
		ReservationID: reservationID,
		DealID:        alloc.DealID.String(),
		InvestorID:    alloc.InvestorID,
		Units:         alloc.Units,
		UnitPrice:     alloc.UnitPrice.String(),
		ApprovedBy:    alloc.ApprovedBy,
		ApprovedAt:    alloc.ApprovedAt.Format(time.RFC3339),
	})
}

func (s *Service) enqueueEvent(ctx context.Context, eventType, partitionKey, traceID string, payload any) {
	if s.outbox == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logEmitFailure(ctx, eventType, err)
		return
	}
	now := s.nowFn()
	envelope := contracts.EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		OccurredAt:    now,
		PartitionKey:  partitionKey,
		SourceService: s.cfg.ServiceName,
		TraceID:       traceID,
		SchemaVersion: "1.0",
		Data:          data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		s.logEmitFailure(ctx, eventType, err)
		return
	}
	if err := s.outbox.Enqueue(ctx, ports.OutboxRecord{
		OutboxID:     uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      body,
		CreatedAt:    now,
	}); err != nil {
		s.logEmitFailure(ctx, eventType, err)
	}
}

func (s *Service) recordAudit(ctx context.Context, action, entityID string, metadata map[string]string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, action, entityID, metadata); err != nil {
		s.logger.WarnContext(ctx, "audit record failed",
			"operation", "record_audit",
			"outcome", "failure",
			"action", action,
			"entity_id", entityID,
			"error", err.Error(),
		)
	}
}

func (s *Service) notify(ctx context.Context, recipient, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, recipient, message); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			"operation", "notify",
			"outcome", "failure",
			"recipient", recipient,
			"error", err.Error(),
		)
	}
}

func (s *Service) logEmitFailure(ctx context.Context, eventType string, err error) {
	s.logger.WarnContext(ctx, "event enqueue failed",
		"operation", "enqueue_event",
		"outcome", "failure",
		"event_type", eventType,
		"error", err.Error(),
	)
}

func hashJSON(v any) string {
	b, _ := json.Marshal(v)
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
