package port

import (
	"context"
	"time"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
)

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	ActorID  string
	TargetID string
	Action   domain.AuditAction
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// AuditRepository exposes the append-only audit log. Entries are never
// rewritten; List returns them in arrival order.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error)
	DeleteAll(ctx context.Context) error
}
