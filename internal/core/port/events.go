package port

import (
	"context"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishIncidentCreated(ctx context.Context, event domain.IncidentCreatedEvent) error
	PublishReportTransitioned(ctx context.Context, event domain.ReportTransitionedEvent) error
	PublishUserAccountCreated(ctx context.Context, event domain.UserAccountCreatedEvent) error
}
