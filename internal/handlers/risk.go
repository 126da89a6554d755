package handlers

import (
	"net/http"
	"strconv"

	"iso-audit/internal/apperr"
	"iso-audit/internal/middleware"
	"iso-audit/internal/risk"
	"iso-audit/internal/scoring"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListVulnerabilities(c *gin.Context) {
	list, err := h.risks.Catalog(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListRisks: ?asset_id=..&level=critical,high
func (h *Handler) ListRisks(c *gin.Context) {
	var f risk.Filter
	if raw := c.Query("asset_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.fail(c, apperr.Validation("asset_id", "некорректный идентификатор"))
			return
		}
		f.AssetID = uint(id)
	}
	f.Levels = convertList[scoring.RiskLevel](queryList(c, "level"))

	list, err := h.risks.List(c.Request.Context(), middleware.OrganizationID(c), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) RiskMatrix(c *gin.Context) {
	m, err := h.risks.Matrix(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteRisk(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	if err := h.risks.Remove(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
