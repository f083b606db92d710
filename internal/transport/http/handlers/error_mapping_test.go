package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/usecase"
)

func respond(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithDomainError(c, err)

	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return rr.Code, body
}

func TestRespondWithDomainError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{
			name:       "invalid transition denial maps to conflict",
			err:        &domain.UnauthorizedError{Action: domain.ActionApproveReport, Reason: domain.DenyInvalidTransition},
			wantStatus: http.StatusConflict,
			wantReason: "invalid_transition",
		},
		{
			name:       "role denial maps to forbidden",
			err:        &domain.UnauthorizedError{Action: domain.ActionApproveReport, Reason: domain.DenyInsufficientRole},
			wantStatus: http.StatusForbidden,
			wantReason: "insufficient_role",
		},
		{
			name:       "ownership denial maps to forbidden",
			err:        &domain.UnauthorizedError{Action: domain.ActionSubmitReport, Reason: domain.DenyNotOwner},
			wantStatus: http.StatusForbidden,
			wantReason: "not_owner",
		},
		{
			name:       "inactive actor denial maps to forbidden",
			err:        &domain.UnauthorizedError{Action: domain.ActionCreateIncident, Reason: domain.DenyInactiveActor},
			wantStatus: http.StatusForbidden,
			wantReason: "inactive_actor",
		},
		{
			name:       "bare invalid transition maps to conflict",
			err:        domain.ErrInvalidTransition,
			wantStatus: http.StatusConflict,
			wantReason: "invalid_transition",
		},
		{
			name:       "concurrent modification maps to conflict",
			err:        usecase.ErrConcurrentModification,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "duplicate username maps to conflict",
			err:        usecase.ErrUsernameTaken,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "not found maps to 404",
			err:        &domain.NotFoundError{Kind: "incident", ID: "inc-404"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "validation error maps to 422",
			err:        &domain.ValidationError{Field: "severity", Constraint: "must be one of baja, media, alta"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "wrapped domain error still matches",
			err:        errors.Join(errors.New("update incident"), usecase.ErrConcurrentModification),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown error maps to opaque 500",
			err:        errors.New("pgx: connection refused"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := respond(t, tc.err)

			if status != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, status)
			}
			if body.Reason != tc.wantReason {
				t.Fatalf("expected reason %q, got %q", tc.wantReason, body.Reason)
			}
			if body.Error == "" {
				t.Fatalf("expected a non-empty error message")
			}
		})
	}
}

func TestRespondWithDomainError_HidesInternalDetail(t *testing.T) {
	status, body := respond(t, errors.New("dial tcp 10.0.0.7:5432: i/o timeout"))

	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body.Error != "internal server error" {
		t.Fatalf("expected opaque message, got %q", body.Error)
	}
}
