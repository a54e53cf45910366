package ports

import "context"

// EventPublisher delivers outbox payloads to the platform event bus.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}

// AuditSink records engine actions in the portal's audit trail. Calls are
// fire-and-forget from the engine's perspective: failures are logged, never
// surfaced to the caller.
type AuditSink interface {
	Record(ctx context.Context, action, entityID string, metadata map[string]string) error
}

// Notifier pushes human-facing messages (approver prompts, investor
// confirmations) to the messaging service. Fire-and-forget like AuditSink.
type Notifier interface {
	Notify(ctx context.Context, recipient, message string) error
}
