package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/domain"
	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
	"github.com/resguardo-civil/incident-reporting-service/internal/transport/http/middleware"
	"github.com/resguardo-civil/incident-reporting-service/internal/usecase"
)

// AuditHandler serves read access to the audit log.
type AuditHandler struct {
	audit *usecase.AuditService
}

// NewAuditHandler builds a new audit handler instance.
func NewAuditHandler(audit *usecase.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// RegisterRoutes wires the audit endpoints into the provided group.
func (h *AuditHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
}

// List returns audit entries in arrival order, optionally filtered.
func (h *AuditHandler) List(c *gin.Context) {
	user, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	filter := port.AuditFilter{
		ActorID:  c.Query("actor_id"),
		TargetID: c.Query("target_id"),
		Action:   domain.AuditAction(c.Query("action")),
		Limit:    parsePositiveInt(c.Query("limit"), 100),
		Offset:   parsePositiveInt(c.Query("offset"), 0),
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "from must be RFC3339"))
			return
		}
		filter.From = from
	}

	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "to must be RFC3339"))
			return
		}
		filter.To = to
	}

	entries, err := h.audit.List(c.Request.Context(), user.Actor(), filter)
	if err != nil {
		RespondWithDomainError(c, err)
		return
	}

	views := make([]AuditEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, AuditEntryView{
			ID:             entry.ID,
			Timestamp:      entry.Timestamp,
			ActorID:        entry.ActorID,
			Action:         entry.Action,
			TargetID:       entry.TargetID,
			ResultingState: entry.ResultingState,
		})
	}

	c.JSON(http.StatusOK, AuditListResponse{Entries: views})
}
