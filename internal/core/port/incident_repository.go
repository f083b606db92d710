package port

import (
	"context"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
)

// IncidentFilter narrows incident listings.
type IncidentFilter struct {
	Status    domain.ReportStatus
	Severity  domain.Severity
	CreatedBy string
	Limit     int
	Offset    int
}

// IncidentRepository exposes persistence behavior for incident reports.
//
// Update is guarded: the write only lands when the stored row still carries
// expectedVersion, otherwise repository.ErrVersionMismatch is returned and
// the row is untouched. This is what serializes concurrent writers of the
// same incident id.
type IncidentRepository interface {
	Create(ctx context.Context, incident domain.Incident) error
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	Update(ctx context.Context, incident domain.Incident, expectedVersion int64) (*domain.Incident, error)
	List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
	Count(ctx context.Context, filter IncidentFilter) (int, error)
	DeleteAll(ctx context.Context) error
}
