package handlers

import (
	"net/http"

	"iso-audit/internal/findings"
	"iso-audit/internal/middleware"
	"iso-audit/internal/models"

	"github.com/gin-gonic/gin"
)

// ListFindings: ?source=..&severity=..&status=.. (значения через запятую или повтором)
func (h *Handler) ListFindings(c *gin.Context) {
	f := findings.Filter{
		Sources:    convertList[models.FindingSource](queryList(c, "source")),
		Severities: convertList[models.FindingSeverity](queryList(c, "severity")),
		Statuses:   convertList[models.FindingStatus](queryList(c, "status")),
	}

	list, err := h.findings.List(c.Request.Context(), middleware.OrganizationID(c), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateFinding(c *gin.Context) {
	var in findings.CreateInput
	if !h.bind(c, &in) {
		return
	}

	f, err := h.findings.CreateManual(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) GetFinding(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	f, err := h.findings.Get(c.Request.Context(), middleware.OrganizationID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) UpdateFinding(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var in findings.UpdateInput
	if !h.bind(c, &in) {
		return
	}

	f, err := h.findings.Update(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) DeleteFinding(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	if err := h.findings.Delete(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GenerateFindings: автогенерация из рисков и чек-листа; повторный запуск дублей не создаёт.
func (h *Handler) GenerateFindings(c *gin.Context) {
	n, err := h.findings.AutoGenerate(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"generated": n})
}

func (h *Handler) FindingStats(c *gin.Context) {
	st, err := h.findings.Stats(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
