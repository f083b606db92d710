package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with the correlation id.
type ErrorResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response bound to the current request.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: middleware.GetRequestID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes the account view returned by the API. The password
// hash never leaves the service.
type UserSummary struct {
	ID         string            `json:"id"`
	Username   string            `json:"username"`
	FullName   string            `json:"full_name"`
	Email      string            `json:"email"`
	Phone      *string           `json:"phone,omitempty"`
	Role       domain.Role       `json:"role"`
	Department domain.Department `json:"department"`
	Active     bool              `json:"active"`
	CreatedAt  time.Time         `json:"created_at"`
	LastLogin  *time.Time        `json:"last_login,omitempty"`
}

func newUserSummary(user domain.User) UserSummary {
	return UserSummary{
		ID:         user.ID,
		Username:   user.Username,
		FullName:   user.FullName,
		Email:      user.Email,
		Phone:      user.Phone,
		Role:       user.Role,
		Department: user.Department,
		Active:     user.Active,
		CreatedAt:  user.CreatedAt,
		LastLogin:  user.LastLogin,
	}
}

// AuthLoginRequest defines the payload for the login endpoint.
type AuthLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthLoginResponse describes the response returned for a successful login.
type AuthLoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        UserSummary `json:"user"`
}

// IncidentView is the API representation of an incident report.
type IncidentView struct {
	ID        string              `json:"id"`
	Details   map[string]any      `json:"details"`
	Severity  domain.Severity     `json:"severity"`
	Status    domain.ReportStatus `json:"status"`
	CreatedBy string              `json:"created_by"`
	UpdatedBy string              `json:"updated_by"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Version   int64               `json:"version"`
}

func newIncidentView(incident domain.Incident) IncidentView {
	return IncidentView{
		ID:        incident.ID,
		Details:   incident.Details,
		Severity:  incident.Severity,
		Status:    incident.Status,
		CreatedBy: incident.CreatedBy,
		UpdatedBy: incident.UpdatedBy,
		CreatedAt: incident.CreatedAt,
		UpdatedAt: incident.UpdatedAt,
		Version:   incident.Version,
	}
}

// CreateIncidentRequest defines the payload for registering an incident.
type CreateIncidentRequest struct {
	Details  map[string]any `json:"details" binding:"required"`
	Severity string         `json:"severity" binding:"required"`
}

// UpdateIncidentRequest defines the payload for editing a draft incident.
type UpdateIncidentRequest struct {
	Details  map[string]any `json:"details" binding:"required"`
	Severity string         `json:"severity" binding:"required"`
}

// TransitionRequest names the workflow action to apply to a report.
type TransitionRequest struct {
	Action string `json:"action" binding:"required"`
}

// IncidentListResponse wraps a page of incidents.
type IncidentListResponse struct {
	Incidents []IncidentView `json:"incidents"`
	Total     int            `json:"total"`
}

// CreateUserRequest defines the payload for registering an account.
type CreateUserRequest struct {
	Username   string  `json:"username" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	FullName   string  `json:"full_name" binding:"required"`
	Email      string  `json:"email" binding:"required"`
	Phone      *string `json:"phone"`
	Role       string  `json:"role" binding:"required"`
	Department string  `json:"department" binding:"required"`
}

// UpdateUserStatusRequest toggles an account's active flag.
type UpdateUserStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// UserListResponse wraps a page of accounts.
type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Total int           `json:"total"`
}

// AuditEntryView is the API representation of one audit log entry.
type AuditEntryView struct {
	ID             string               `json:"id"`
	Timestamp      time.Time            `json:"timestamp"`
	ActorID        string               `json:"actor_id"`
	Action         domain.AuditAction   `json:"action"`
	TargetID       string               `json:"target_id"`
	ResultingState *domain.ReportStatus `json:"resulting_state,omitempty"`
}

// AuditListResponse wraps a list of audit entries in arrival order.
type AuditListResponse struct {
	Entries []AuditEntryView `json:"entries"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
