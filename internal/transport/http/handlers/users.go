package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/transport/http/middleware"
	"github.com/resguardo-civil/incident-reporting-service/internal/usecase"
)

// UserHandler serves the account administration endpoints.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler builds a new user handler instance.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes wires the user endpoints into the provided group.
func (h *UserHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PUT("/:id/status", h.SetStatus)
}

// Create registers a new account.
func (h *UserHandler) Create(c *gin.Context) {
	user, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	created, err := h.users.Create(c.Request.Context(), user.Actor(), usecase.CreateUserInput{
		Username:   req.Username,
		Password:   req.Password,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Role:       domain.Role(req.Role),
		Department: domain.Department(req.Department),
	})
	if err != nil {
		RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserSummary(*created))
}

// Get returns a single account.
func (h *UserHandler) Get(c *gin.Context) {
	user, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	found, err := h.users.Get(c.Request.Context(), user.Actor(), c.Param("id"))
	if err != nil {
		RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserSummary(*found))
}

// List returns accounts filtered by role and active flag.
func (h *UserHandler) List(c *gin.Context) {
	user, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	filter := port.UserFilter{
		Role:   domain.Role(c.Query("role")),
		Limit:  parsePositiveInt(c.Query("limit"), 50),
		Offset: parsePositiveInt(c.Query("offset"), 0),
	}

	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	users, total, err := h.users.List(c.Request.Context(), user.Actor(), filter)
	if err != nil {
		RespondWithDomainError(c, err)
		return
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, newUserSummary(u))
	}

	c.JSON(http.StatusOK, UserListResponse{Users: summaries, Total: total})
}

// SetStatus activates or deactivates an account.
func (h *UserHandler) SetStatus(c *gin.Context) {
	user, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "active flag is required"))
		return
	}

	if err := h.users.SetActive(c.Request.Context(), user.Actor(), c.Param("id"), *req.Active); err != nil {
		RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "user status updated"})
}
