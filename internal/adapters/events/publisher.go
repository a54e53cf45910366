package events

import (
	"context"
	"log/slog"
)

// LoggingPublisher delivers outbox events to the log stream. The platform bus
// adapter replaces it in deployed runtimes; locally the log line is the bus.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	p.logger.InfoContext(ctx, "published event", "event_type", eventType, "payload", string(payload))
	return nil
}

// LoggingAuditSink satisfies the audit collaborator with structured log
// entries; the portal's audit service consumes the same fields over RPC.
type LoggingAuditSink struct {
	logger *slog.Logger
}

func NewLoggingAuditSink(logger *slog.Logger) *LoggingAuditSink {
	return &LoggingAuditSink{logger: logger}
}

func (s *LoggingAuditSink) Record(ctx context.Context, action, entityID string, metadata map[string]string) error {
	fields := []any{
		"module", "events.audit",
		"layer", "adapter",
		"action", action,
		"entity_id", entityID,
	}
	for k, v := range metadata {
		fields = append(fields, "meta_"+k, v)
	}
	s.logger.InfoContext(ctx, "audit entry", fields...)
	return nil
}

// LoggingNotifier satisfies the notification collaborator with log entries.
type LoggingNotifier struct {
	logger *slog.Logger
}

func NewLoggingNotifier(logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger}
}

func (n *LoggingNotifier) Notify(ctx context.Context, recipient, message string) error {
	n.logger.InfoContext(ctx, "notification sent",
		"module", "events.notifier",
		"layer", "adapter",
		"recipient", recipient,
		"message", message,
	)
	return nil
}
