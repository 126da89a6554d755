package handlers

import (
	"net/http"

	"iso-audit/internal/compliance"
	"iso-audit/internal/middleware"

	"github.com/gin-gonic/gin"
)

// GetChecklist: все контроли Annex A по доменам с оценками организации.
func (h *Handler) GetChecklist(c *gin.Context) {
	list, err := h.compliance.Checklist(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) AssessControl(c *gin.Context) {
	controlID, ok := h.paramID(c, "control_id")
	if !ok {
		return
	}
	var in compliance.AssessControlInput
	if !h.bind(c, &in) {
		return
	}
	in.OrganizationID = middleware.OrganizationID(c)
	in.UserID = middleware.UserID(c)
	in.ControlID = controlID

	a, err := h.compliance.AssessControl(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) ComplianceStats(c *gin.Context) {
	stats, err := h.compliance.Stats(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
