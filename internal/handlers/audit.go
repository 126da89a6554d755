package handlers

import (
	"net/http"
	"time"

	"iso-audit/internal/apperr"
	"iso-audit/internal/middleware"

	"github.com/gin-gonic/gin"
)

const activityLimit = 200

type activityView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Entity    string    `json:"entity"`
	EntityID  uint      `json:"entity_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// ListActivity: последние записи журнала действий организации.
func (h *Handler) ListActivity(c *gin.Context) {
	logs, err := h.store.AuditLogs().List(c.Request.Context(), middleware.OrganizationID(c), activityLimit)
	if err != nil {
		h.fail(c, apperr.FromStore(err, "журнал"))
		return
	}

	out := make([]activityView, 0, len(logs))
	for _, l := range logs {
		out = append(out, activityView{
			ID:        l.ID,
			Username:  l.User.Username,
			Entity:    l.Entity,
			EntityID:  l.EntityID,
			Action:    l.Action,
			Details:   l.Details,
			CreatedAt: l.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
