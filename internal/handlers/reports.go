package handlers

import (
	"net/http"

	"iso-audit/internal/middleware"
	"iso-audit/internal/reports"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListReports(c *gin.Context) {
	list, err := h.reports.List(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GenerateReport фиксирует текущие показатели в новой версии отчёта.
func (h *Handler) GenerateReport(c *gin.Context) {
	var n reports.Narrative
	if !h.bind(c, &n) {
		return
	}

	report, err := h.reports.Generate(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), n)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) GetReport(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	report, err := h.reports.Get(c.Request.Context(), middleware.OrganizationID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateReport правит только текст отчёта, снимок показателей остаётся прежним.
func (h *Handler) UpdateReport(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var u reports.NarrativeUpdate
	if !h.bind(c, &u) {
		return
	}

	report, err := h.reports.UpdateNarrative(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), id, u)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) DeleteReport(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	if err := h.reports.Delete(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
