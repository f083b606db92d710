package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/transport/http/middleware"
	"github.com/resguardo-civil/incident-reporting-service/internal/usecase"
)

// RespondWithDomainError translates core and usecase errors into HTTP
// responses. Policy denials keep their machine-readable reason; everything
// unrecognized becomes an opaque 500.
func RespondWithDomainError(c *gin.Context, err error) {
	var (
		unauthorized *domain.UnauthorizedError
		notFound     *domain.NotFoundError
		validation   *domain.ValidationError
	)

	switch {
	case errors.As(err, &unauthorized):
		if unauthorized.Reason == domain.DenyInvalidTransition {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:     "transition not allowed from the current state",
				Reason:    string(unauthorized.Reason),
				RequestID: middleware.GetRequestID(c),
			})
			return
		}
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:     "operation not permitted",
			Reason:    string(unauthorized.Reason),
			RequestID: middleware.GetRequestID(c),
		})

	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:     "transition not allowed from the current state",
			Reason:    string(domain.DenyInvalidTransition),
			RequestID: middleware.GetRequestID(c),
		})

	case errors.Is(err, usecase.ErrConcurrentModification):
		c.JSON(http.StatusConflict, NewErrorResponse(c, "incident was modified concurrently, retry with fresh state"))

	case errors.Is(err, usecase.ErrUsernameTaken):
		c.JSON(http.StatusConflict, NewErrorResponse(c, "username already taken"))

	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, NewErrorResponse(c, notFound.Error()))

	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, NewErrorResponse(c, validation.Error()))

	default:
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "internal server error"))
	}
}
