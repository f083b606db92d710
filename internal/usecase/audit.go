package usecase

import (
	"context"
	"fmt"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
)

// AuditService exposes read access to the append-only audit log.
type AuditService struct {
	audit port.AuditRepository
}

// NewAuditService constructs an AuditService instance.
func NewAuditService(audit port.AuditRepository) *AuditService {
	return &AuditService{audit: audit}
}

// List returns audit entries in arrival order for reviewers and admins.
func (s *AuditService) List(ctx context.Context, actor domain.Actor, filter port.AuditFilter) ([]domain.AuditEntry, error) {
	if decision := domain.Decide(actor, domain.ActionViewAudit, nil); !decision.Allowed {
		return nil, &domain.UnauthorizedError{Action: domain.ActionViewAudit, Reason: decision.Reason}
	}

	entries, err := s.audit.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	return entries, nil
}
