package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/logger"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/security"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/telemetry"
	"github.com/resguardo-civil/incident-reporting-service/internal/repository"
)

// ErrUsernameTaken indicates the requested username already exists.
var ErrUsernameTaken = errors.New("username already taken")

// CreateUserInput carries the fields for registering a new account.
type CreateUserInput struct {
	Username   string
	Password   string
	FullName   string
	Email      string
	Phone      *string
	Role       domain.Role
	Department domain.Department
}

// UserService administers the account directory. Every operation is gated
// on the users.manage policy action.
type UserService struct {
	users     port.UserRepository
	audit     port.AuditRepository
	publisher port.EventPublisher
	metrics   *telemetry.Metrics
}

// NewUserService constructs a UserService instance.
func NewUserService(
	users port.UserRepository,
	audit port.AuditRepository,
	publisher port.EventPublisher,
	metrics *telemetry.Metrics,
) *UserService {
	return &UserService{users: users, audit: audit, publisher: publisher, metrics: metrics}
}

// Create registers a new account.
func (s *UserService) Create(ctx context.Context, actor domain.Actor, input CreateUserInput) (*domain.User, error) {
	if decision := domain.Decide(actor, domain.ActionManageUsers, nil); !decision.Allowed {
		return nil, &domain.UnauthorizedError{Action: domain.ActionManageUsers, Reason: decision.Reason}
	}

	if err := validateCreateUserInput(&input); err != nil {
		return nil, err
	}

	validator := security.DefaultPasswordValidator(input.Username, input.Email, input.FullName)
	if err := validator.Validate(input.Password); err != nil {
		return nil, &domain.ValidationError{Field: "password", Constraint: err.Error()}
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		PasswordHash: hash,
		FullName:     input.FullName,
		Email:        input.Email,
		Phone:        input.Phone,
		Role:         input.Role,
		Department:   input.Department,
		Active:       true,
		CreatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.appendAudit(ctx, domain.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		ActorID:   actor.ID,
		Action:    domain.AuditUserCreated,
		TargetID:  user.ID,
	})

	if s.publisher != nil {
		if err := s.publisher.PublishUserAccountCreated(ctx, domain.UserAccountCreatedEvent{
			EventID:    uuid.NewString(),
			UserID:     user.ID,
			Username:   user.Username,
			Role:       user.Role,
			Department: user.Department,
			CreatedBy:  actor.ID,
			CreatedAt:  now,
		}); err != nil {
			logger.WithContext(ctx).Warn("publish user created event failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}

	sanitized := user
	sanitized.PasswordHash = ""

	return &sanitized, nil
}

// SetActive activates or deactivates an account. Deactivation takes effect
// on the target's next request regardless of outstanding tokens.
func (s *UserService) SetActive(ctx context.Context, actor domain.Actor, id string, active bool) error {
	if decision := domain.Decide(actor, domain.ActionManageUsers, nil); !decision.Allowed {
		return &domain.UnauthorizedError{Action: domain.ActionManageUsers, Reason: decision.Reason}
	}

	if err := s.users.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.NotFoundError{Kind: "user", ID: id}
		}
		return fmt.Errorf("set user active: %w", err)
	}

	s.appendAudit(ctx, domain.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		ActorID:   actor.ID,
		Action:    domain.AuditUserStatusChanged,
		TargetID:  id,
	})

	return nil
}

// Get loads a single account.
func (s *UserService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	if decision := domain.Decide(actor, domain.ActionManageUsers, nil); !decision.Allowed {
		return nil, &domain.UnauthorizedError{Action: domain.ActionManageUsers, Reason: decision.Reason}
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &domain.NotFoundError{Kind: "user", ID: id}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &sanitized, nil
}

// List returns accounts matching the filter.
func (s *UserService) List(ctx context.Context, actor domain.Actor, filter port.UserFilter) ([]domain.User, int, error) {
	if decision := domain.Decide(actor, domain.ActionManageUsers, nil); !decision.Allowed {
		return nil, 0, &domain.UnauthorizedError{Action: domain.ActionManageUsers, Reason: decision.Reason}
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	for i := range users {
		users[i].PasswordHash = ""
	}

	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

func (s *UserService) appendAudit(ctx context.Context, entry domain.AuditEntry) {
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

func validateCreateUserInput(input *CreateUserInput) error {
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.TrimSpace(input.Email)

	if input.Username == "" {
		return &domain.ValidationError{Field: "username", Constraint: "is required"}
	}
	if input.FullName == "" {
		return &domain.ValidationError{Field: "full_name", Constraint: "is required"}
	}
	if input.Email == "" {
		return &domain.ValidationError{Field: "email", Constraint: "is required"}
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return &domain.ValidationError{Field: "email", Constraint: "must be a valid address"}
	}
	if !input.Role.Valid() {
		return &domain.ValidationError{Field: "role", Constraint: "must be a known role"}
	}
	if !input.Department.Valid() {
		return &domain.ValidationError{Field: "department", Constraint: "must be a known department"}
	}

	return nil
}
