package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, actorID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("actor_id", actorID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishIncidentCreated logs irs.incident.created events.
func (p *StubPublisher) PublishIncidentCreated(_ context.Context, event domain.IncidentCreatedEvent) error {
	payload := map[string]any{
		"incident_id": event.IncidentID,
		"created_by":  event.CreatedBy,
		"severity":    event.Severity,
		"created_at":  event.CreatedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("irs.incident.created", event.CreatedBy, event.CreatedAt, payload)
	return nil
}

// PublishReportTransitioned logs irs.report.transitioned events.
func (p *StubPublisher) PublishReportTransitioned(_ context.Context, event domain.ReportTransitionedEvent) error {
	payload := map[string]any{
		"incident_id": event.IncidentID,
		"action":      event.Action,
		"from_status": event.FromStatus,
		"to_status":   event.ToStatus,
		"actor_id":    event.ActorID,
		"occurred_at": event.OccurredAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("irs.report.transitioned", event.ActorID, event.OccurredAt, payload)
	return nil
}

// PublishUserAccountCreated logs irs.user.created events.
func (p *StubPublisher) PublishUserAccountCreated(_ context.Context, event domain.UserAccountCreatedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"username":   event.Username,
		"role":       event.Role,
		"department": event.Department,
		"created_by": event.CreatedBy,
		"created_at": event.CreatedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("irs.user.created", event.CreatedBy, event.CreatedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
