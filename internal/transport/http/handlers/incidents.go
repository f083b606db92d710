package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/transport/http/middleware"
	"github.com/resguardo-civil/incident-reporting-service/internal/usecase"
)

// IncidentHandler serves the incident and report workflow endpoints.
type IncidentHandler struct {
	incidents *usecase.IncidentService
}

// NewIncidentHandler builds a new incident handler instance.
func NewIncidentHandler(incidents *usecase.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents}
}

// RegisterRoutes wires the incident endpoints into the provided group.
func (h *IncidentHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.POST("/:id/transitions", h.Transition)
}

// Create registers a new draft incident owned by the caller.
func (h *IncidentHandler) Create(c *gin.Context) {
	user, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "details and severity are required"))
		return
	}

	incident, err := h.incidents.Create(c.Request.Context(), user.Actor(), req.Details, domain.Severity(req.Severity))
	if err != nil {
		RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newIncidentView(*incident))
}

// Get returns a single incident.
func (h *IncidentHandler) Get(c *gin.Context) {
	user, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	incident, err := h.incidents.Get(c.Request.Context(), user.Actor(), c.Param("id"))
	if err != nil {
		RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newIncidentView(*incident))
}

// List returns incidents filtered by status, severity, and reporter.
func (h *IncidentHandler) List(c *gin.Context) {
	user, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	filter := port.IncidentFilter{
		Status:    domain.ReportStatus(c.Query("status")),
		Severity:  domain.Severity(c.Query("severity")),
		CreatedBy: c.Query("created_by"),
		Limit:     parsePositiveInt(c.Query("limit"), 50),
		Offset:    parsePositiveInt(c.Query("offset"), 0),
	}

	incidents, total, err := h.incidents.List(c.Request.Context(), user.Actor(), filter)
	if err != nil {
		RespondWithDomainError(c, err)
		return
	}

	views := make([]IncidentView, 0, len(incidents))
	for _, incident := range incidents {
		views = append(views, newIncidentView(incident))
	}

	c.JSON(http.StatusOK, IncidentListResponse{Incidents: views, Total: total})
}

// Update replaces the details and severity of a draft incident.
func (h *IncidentHandler) Update(c *gin.Context) {
	user, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "details and severity are required"))
		return
	}

	incident, err := h.incidents.UpdateDetails(c.Request.Context(), user.Actor(), c.Param("id"), req.Details, domain.Severity(req.Severity))
	if err != nil {
		RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newIncidentView(*incident))
}

// Transition applies a workflow action (submit, approve, reject, close).
func (h *IncidentHandler) Transition(c *gin.Context) {
	user, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "action is required"))
		return
	}

	incident, err := h.incidents.Transition(c.Request.Context(), user.Actor(), c.Param("id"), domain.Action(req.Action))
	if err != nil {
		RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newIncidentView(*incident))
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
