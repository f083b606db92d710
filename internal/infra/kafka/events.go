package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	ActorID   string           `json:"actor_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, actorID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		ActorID:   actorID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishIncidentCreated publishes irs.incident.created events.
func (p *EventPublisher) PublishIncidentCreated(ctx context.Context, event domain.IncidentCreatedEvent) error {
	payload := struct {
		IncidentID string         `json:"incident_id"`
		CreatedBy  string         `json:"created_by"`
		Severity   string         `json:"severity"`
		CreatedAt  time.Time      `json:"created_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		IncidentID: event.IncidentID,
		CreatedBy:  event.CreatedBy,
		Severity:   string(event.Severity),
		CreatedAt:  event.CreatedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "irs.incident.created", event.CreatedBy, event.CreatedAt, payload)
}

// PublishReportTransitioned publishes irs.report.transitioned events.
func (p *EventPublisher) PublishReportTransitioned(ctx context.Context, event domain.ReportTransitionedEvent) error {
	payload := struct {
		IncidentID string         `json:"incident_id"`
		Action     string         `json:"action"`
		FromStatus string         `json:"from_status"`
		ToStatus   string         `json:"to_status"`
		ActorID    string         `json:"actor_id"`
		OccurredAt time.Time      `json:"occurred_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		IncidentID: event.IncidentID,
		Action:     string(event.Action),
		FromStatus: string(event.FromStatus),
		ToStatus:   string(event.ToStatus),
		ActorID:    event.ActorID,
		OccurredAt: event.OccurredAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "irs.report.transitioned", event.ActorID, event.OccurredAt, payload)
}

// PublishUserAccountCreated publishes irs.user.created events.
func (p *EventPublisher) PublishUserAccountCreated(ctx context.Context, event domain.UserAccountCreatedEvent) error {
	payload := struct {
		UserID     string         `json:"user_id"`
		Username   string         `json:"username"`
		Role       string         `json:"role"`
		Department string         `json:"department"`
		CreatedBy  string         `json:"created_by"`
		CreatedAt  time.Time      `json:"created_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UserID:     event.UserID,
		Username:   event.Username,
		Role:       string(event.Role),
		Department: string(event.Department),
		CreatedBy:  event.CreatedBy,
		CreatedAt:  event.CreatedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "irs.user.created", event.CreatedBy, event.CreatedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
