package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/logger"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/security"
	"github.com/resguardo-civil/incident-reporting-service/internal/infra/telemetry"
	"github.com/resguardo-civil/incident-reporting-service/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided username or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account has been deactivated.
	ErrInactiveAccount = errors.New("account is not active")
)

// decoyHash keeps the password check on the same code path when the
// username does not exist, so lookup failures are not observable through
// response timing.
const decoyHash = "argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AuthService coordinates login and token resolution.
type AuthService struct {
	users   port.UserRepository
	tokens  *security.TokenManager
	metrics *telemetry.Metrics
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users port.UserRepository, tokens *security.TokenManager, metrics *telemetry.Metrics) *AuthService {
	return &AuthService{users: users, tokens: tokens, metrics: metrics}
}

// Login validates credentials and issues an access token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			security.VerifyPassword(password, decoyHash)
			s.countLogin("invalid_credentials")
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !user.Active {
		security.VerifyPassword(password, decoyHash)
		s.countLogin("inactive_account")
		return "", domain.User{}, ErrInactiveAccount
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		s.countLogin("invalid_credentials")
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueAccessToken(user.ID, string(user.Role), time.Now())
	if err != nil {
		return "", domain.User{}, fmt.Errorf("issue access token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// Login already succeeded; the stamp is informational.
		logger.WithContext(ctx).Warn("update last login failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	s.countLogin("success")

	sanitized := *user
	sanitized.PasswordHash = ""

	return token, sanitized, nil
}

// ResolveActor validates the access token and loads the current account
// record. Tokens of deactivated or deleted accounts resolve to an error
// even when the signature is still valid.
func (s *AuthService) ResolveActor(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("parse access token: %w", err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInactiveAccount
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !user.Active {
		return domain.User{}, ErrInactiveAccount
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return sanitized, nil
}

func (s *AuthService) countLogin(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
}
