package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resguardo-civil/incident-reporting-service/internal/usecase"
)

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler builds a new auth handler instance.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes wires the auth endpoints into the provided group.
func (h *AuthHandler) RegisterRoutes(group *gin.RouterGroup, loginMiddleware ...gin.HandlerFunc) {
	handlers := append([]gin.HandlerFunc{}, loginMiddleware...)
	handlers = append(handlers, h.Login)
	group.POST("/login", handlers...)
}

// Login authenticates a username/password pair and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username and password are required"))
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid credentials"))
		case errors.Is(err, usecase.ErrInactiveAccount):
			c.JSON(http.StatusForbidden, NewErrorResponse(c, "account is not active"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "login failed"))
		}
		return
	}

	c.JSON(http.StatusOK, AuthLoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        newUserSummary(user),
	})
}
