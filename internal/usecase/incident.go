package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/logger"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/telemetry"
	"github.com/resguardo-civil/incident-reporting-service/internal/repository"
)

// ErrConcurrentModification indicates the incident kept changing under the
// writer and the operation gave up after a retry.
var ErrConcurrentModification = errors.New("incident modified concurrently")

// requiredDetailKeys must be present as non-empty strings in every
// incident's details payload.
var requiredDetailKeys = []string{"ubicacion", "descripcion"}

// reservedDetailKeys would shadow managed record fields if allowed inside
// the free-form payload.
var reservedDetailKeys = []string{"estadoReporte", "id", "createdBy"}

// IncidentService coordinates incident reporting and the report workflow.
type IncidentService struct {
	incidents port.IncidentRepository
	audit     port.AuditRepository
	publisher port.EventPublisher
	metrics   *telemetry.Metrics
}

// NewIncidentService constructs an IncidentService instance.
func NewIncidentService(
	incidents port.IncidentRepository,
	audit port.AuditRepository,
	publisher port.EventPublisher,
	metrics *telemetry.Metrics,
) *IncidentService {
	return &IncidentService{
		incidents: incidents,
		audit:     audit,
		publisher: publisher,
		metrics:   metrics,
	}
}

// Create registers a new incident as a draft owned by the actor.
func (s *IncidentService) Create(ctx context.Context, actor domain.Actor, details map[string]any, severity domain.Severity) (*domain.Incident, error) {
	if decision := domain.Decide(actor, domain.ActionCreateIncident, nil); !decision.Allowed {
		return nil, &domain.UnauthorizedError{Action: domain.ActionCreateIncident, Reason: decision.Reason}
	}

	if !severity.Valid() {
		return nil, &domain.ValidationError{Field: "severity", Constraint: "must be one of baja, media, alta"}
	}

	if err := validateDetails(details); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	incident := domain.Incident{
		ID:        uuid.NewString(),
		Details:   details,
		Severity:  severity,
		Status:    domain.StatusDraft,
		CreatedBy: actor.ID,
		UpdatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	s.appendAudit(ctx, domain.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		ActorID:   actor.ID,
		Action:    domain.AuditIncidentCreated,
		TargetID:  incident.ID,
	})

	if s.publisher != nil {
		if err := s.publisher.PublishIncidentCreated(ctx, domain.IncidentCreatedEvent{
			EventID:    uuid.NewString(),
			IncidentID: incident.ID,
			CreatedBy:  actor.ID,
			Severity:   severity,
			CreatedAt:  now,
		}); err != nil {
			logger.WithContext(ctx).Warn("publish incident created event failed",
				zap.String("incident_id", incident.ID),
				zap.Error(err),
			)
		}
	}

	return &incident, nil
}

// Get loads a single incident. Any active account may read incidents.
func (s *IncidentService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Incident, error) {
	if !actor.Active {
		return nil, &domain.UnauthorizedError{Action: domain.ActionEditIncident, Reason: domain.DenyInactiveActor}
	}

	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &domain.NotFoundError{Kind: "incident", ID: id}
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}

	return incident, nil
}

// List returns incidents matching the filter. Any active account may read.
func (s *IncidentService) List(ctx context.Context, actor domain.Actor, filter port.IncidentFilter) ([]domain.Incident, int, error) {
	if !actor.Active {
		return nil, 0, &domain.UnauthorizedError{Action: domain.ActionEditIncident, Reason: domain.DenyInactiveActor}
	}

	incidents, err := s.incidents.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}

	total, err := s.incidents.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	return incidents, total, nil
}

// UpdateDetails replaces the descriptive payload and severity of a draft.
// Concurrent writers of the same incident are serialized through the
// version guard: a stale write is re-read and retried once against the
// fresh record before giving up.
func (s *IncidentService) UpdateDetails(ctx context.Context, actor domain.Actor, id string, details map[string]any, severity domain.Severity) (*domain.Incident, error) {
	if !severity.Valid() {
		return nil, &domain.ValidationError{Field: "severity", Constraint: "must be one of baja, media, alta"}
	}

	if err := validateDetails(details); err != nil {
		return nil, err
	}

	apply := func(current domain.Incident) (domain.Incident, error) {
		if decision := domain.Decide(actor, domain.ActionEditIncident, &current); !decision.Allowed {
			return domain.Incident{}, &domain.UnauthorizedError{Action: domain.ActionEditIncident, Reason: decision.Reason}
		}

		updated := current.Clone()
		updated.Details = details
		updated.Severity = severity
		updated.UpdatedBy = actor.ID
		updated.UpdatedAt = time.Now().UTC()
		return updated, nil
	}

	updated, err := s.writeWithRetry(ctx, id, apply)
	if err != nil {
		return nil, err
	}

	s.appendAudit(ctx, domain.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: updated.UpdatedAt,
		ActorID:   actor.ID,
		Action:    domain.AuditIncidentUpdated,
		TargetID:  updated.ID,
	})

	return updated, nil
}

// Transition moves a report along the workflow graph on behalf of the actor.
func (s *IncidentService) Transition(ctx context.Context, actor domain.Actor, id string, action domain.Action) (*domain.Incident, error) {
	if !domain.IsWorkflowAction(action) {
		return nil, &domain.ValidationError{Field: "action", Constraint: "must be a workflow action"}
	}

	var from domain.ReportStatus
	apply := func(current domain.Incident) (domain.Incident, error) {
		from = current.Status
		return domain.ApplyTransition(current, action, actor, time.Now())
	}

	updated, err := s.writeWithRetry(ctx, id, apply)
	if err != nil {
		s.countTransition(action, "failure")
		return nil, err
	}

	state := updated.Status
	s.appendAudit(ctx, domain.AuditEntry{
		ID:             uuid.NewString(),
		Timestamp:      updated.UpdatedAt,
		ActorID:        actor.ID,
		Action:         domain.AuditReportTransition,
		TargetID:       updated.ID,
		ResultingState: &state,
	})

	if s.publisher != nil {
		if err := s.publisher.PublishReportTransitioned(ctx, domain.ReportTransitionedEvent{
			EventID:    uuid.NewString(),
			IncidentID: updated.ID,
			Action:     action,
			FromStatus: from,
			ToStatus:   updated.Status,
			ActorID:    actor.ID,
			OccurredAt: updated.UpdatedAt,
		}); err != nil {
			logger.WithContext(ctx).Warn("publish report transitioned event failed",
				zap.String("incident_id", updated.ID),
				zap.Error(err),
			)
		}
	}

	s.countTransition(action, "success")

	return updated, nil
}

// writeWithRetry reads the incident, applies fn, and persists the result
// guarded by the version read. A single stale-version retry re-reads the
// record so fn re-evaluates policy against the fresh state.
func (s *IncidentService) writeWithRetry(ctx context.Context, id string, fn func(domain.Incident) (domain.Incident, error)) (*domain.Incident, error) {
	for attempt := 0; attempt < 2; attempt++ {
		current, err := s.incidents.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &domain.NotFoundError{Kind: "incident", ID: id}
			}
			return nil, fmt.Errorf("get incident: %w", err)
		}

		next, err := fn(*current)
		if err != nil {
			return nil, err
		}

		updated, err := s.incidents.Update(ctx, next, current.Version)
		if err == nil {
			return updated, nil
		}

		if errors.Is(err, repository.ErrVersionMismatch) {
			if s.metrics != nil {
				s.metrics.IncidentWriteRetry.Inc()
			}
			continue
		}

		if errors.Is(err, repository.ErrNotFound) {
			return nil, &domain.NotFoundError{Kind: "incident", ID: id}
		}

		return nil, fmt.Errorf("update incident: %w", err)
	}

	return nil, ErrConcurrentModification
}

// appendAudit records the entry after the primary write has landed. An
// append failure is logged and counted, never propagated: the mutation
// itself already succeeded.
func (s *IncidentService) appendAudit(ctx context.Context, entry domain.AuditEntry) {
	if err := s.audit.Append(ctx, entry); err != nil {
		if s.metrics != nil {
			s.metrics.AuditAppendFailed.Inc()
		}
		logger.WithContext(ctx).Error("audit append failed",
			zap.String("action", string(entry.Action)),
			zap.String("target_id", entry.TargetID),
			zap.Error(err),
		)
	}
}

func (s *IncidentService) countTransition(action domain.Action, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ReportTransitions.WithLabelValues(string(action), outcome).Inc()
}

func validateDetails(details map[string]any) error {
	if details == nil {
		return &domain.ValidationError{Field: "details", Constraint: "is required"}
	}

	for _, key := range requiredDetailKeys {
		value, ok := details[key]
		if !ok {
			return &domain.ValidationError{Field: "details." + key, Constraint: "is required"}
		}
		str, ok := value.(string)
		if !ok || strings.TrimSpace(str) == "" {
			return &domain.ValidationError{Field: "details." + key, Constraint: "must be a non-empty string"}
		}
	}

	for _, key := range reservedDetailKeys {
		if _, ok := details[key]; ok {
			return &domain.ValidationError{Field: "details." + key, Constraint: "is a reserved key"}
		}
	}

	return nil
}
