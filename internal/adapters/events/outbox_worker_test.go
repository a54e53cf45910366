package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/crestbridge/placement-portal/services/inventory-engine/internal/ports"
)

type stubOutbox struct {
	mu           sync.Mutex
	pending      []ports.OutboxRecord
	published    []uuid.UUID
	failed       []uuid.UUID
	deadLettered []uuid.UUID
}

func (s *stubOutbox) Enqueue(_ context.Context, record ports.OutboxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, record)
	return nil
}

func (s *stubOutbox) ClaimUnpublished(_ context.Context, limit int, _ string, _ time.Time) ([]ports.OutboxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	out := s.pending
	s.pending = nil
	return out, nil
}

func (s *stubOutbox) MarkPublished(_ context.Context, outboxID uuid.UUID, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, outboxID)
	return nil
}

func (s *stubOutbox) MarkFailed(_ context.Context, outboxID uuid.UUID, _ string, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, outboxID)
	return nil
}

func (s *stubOutbox) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, _ string, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadLettered = append(s.deadLettered, outboxID)
	return nil
}

type stubPublisher struct {
	failTypes map[string]bool
	seen      []string
}

func (p *stubPublisher) Publish(_ context.Context, eventType string, _ []byte) error {
	p.seen = append(p.seen, eventType)
	if p.failTypes[eventType] {
		return errors.New("broker unavailable")
	}
	return nil
}

func TestOutboxWorkerPublishesAndMarksOutcomes(t *testing.T) {
	t.Parallel()

	okID, badID := uuid.New(), uuid.New()
	outbox := &stubOutbox{pending: []ports.OutboxRecord{
		{OutboxID: okID, EventType: "inventory.hold_placed.v1", Payload: []byte(`{}`)},
		{OutboxID: badID, EventType: "inventory.hold_released.v1", Payload: []byte(`{}`)},
	}}
	publisher := &stubPublisher{failTypes: map[string]bool{"inventory.hold_released.v1": true}}
	worker := NewOutboxWorker(slog.Default(), outbox, publisher, time.Second, 10, time.Minute, 5)

	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("process once failed: %v", err)
	}
	if len(outbox.published) != 1 || outbox.published[0] != okID {
		t.Fatalf("expected ok record published, got %v", outbox.published)
	}
	if len(outbox.failed) != 1 || outbox.failed[0] != badID {
		t.Fatalf("expected failing record marked for retry, got %v", outbox.failed)
	}
}

func TestOutboxWorkerDeadLettersExhaustedRecords(t *testing.T) {
	t.Parallel()

	tiredID := uuid.New()
	outbox := &stubOutbox{pending: []ports.OutboxRecord{
		{OutboxID: tiredID, EventType: "inventory.lot_added.v1", Payload: []byte(`{}`), RetryCount: 5},
	}}
	publisher := &stubPublisher{}
	worker := NewOutboxWorker(slog.Default(), outbox, publisher, time.Second, 10, time.Minute, 5)

	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("process once failed: %v", err)
	}
	if len(outbox.deadLettered) != 1 || outbox.deadLettered[0] != tiredID {
		t.Fatalf("expected exhausted record dead-lettered, got %v", outbox.deadLettered)
	}
	if len(publisher.seen) != 0 {
		t.Fatalf("expected no publish attempt for dead-lettered record, got %v", publisher.seen)
	}
}
