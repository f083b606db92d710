package port

import (
	"context"
	"time"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role   domain.Role
	Active *bool
	Limit  int
	Offset int
}

// UserRepository exposes persistence behavior for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int, error)
	DeleteAll(ctx context.Context) error
}
