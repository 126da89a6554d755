package handlers

import (
	"net/http"

	"iso-audit/internal/assets"
	"iso-audit/internal/middleware"
	"iso-audit/internal/risk"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAssets(c *gin.Context) {
	list, err := h.assets.List(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateAsset(c *gin.Context) {
	var in assets.Input
	if !h.bind(c, &in) {
		return
	}

	asset, err := h.assets.Create(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, asset)
}

// GetAsset: карточка актива вместе с оценками рисков по нему.
func (h *Handler) GetAsset(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	orgID := middleware.OrganizationID(c)

	asset, err := h.assets.Get(ctx, orgID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	risks, err := h.risks.List(ctx, orgID, risk.Filter{AssetID: id})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset, "risks": risks})
}

func (h *Handler) UpdateAsset(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var in assets.Input
	if !h.bind(c, &in) {
		return
	}

	asset, err := h.assets.Update(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// DeleteAsset деактивирует актив: история оценок и находок сохраняется.
func (h *Handler) DeleteAsset(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	if err := h.assets.Deactivate(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AssessAssetVulnerability: привязка уязвимости к активу с оценкой риска (повторный вызов обновляет оценку).
func (h *Handler) AssessAssetVulnerability(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var in risk.AssessInput
	if !h.bind(c, &in) {
		return
	}
	in.OrganizationID = middleware.OrganizationID(c)
	in.UserID = middleware.UserID(c)
	in.AssetID = id

	av, err := h.risks.Assess(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, av)
}
