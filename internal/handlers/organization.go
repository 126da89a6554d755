package handlers

import (
	"net/http"

	"iso-audit/internal/apperr"
	"iso-audit/internal/middleware"
	"iso-audit/internal/organization"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetOrganization(c *gin.Context) {
	org, err := h.orgs.Get(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// CreateOrganization: создатель становится администратором; сессия обновляется сразу.
func (h *Handler) CreateOrganization(c *gin.Context) {
	var in organization.Input
	if !h.bind(c, &in) {
		return
	}

	org, user, err := h.orgs.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	sess := sessions.Default(c)
	middleware.SetSession(sess, user)
	if err := sess.Save(); err != nil {
		h.fail(c, apperr.Internal("сохранение сессии", err))
		return
	}
	c.JSON(http.StatusCreated, org)
}

func (h *Handler) UpdateOrganization(c *gin.Context) {
	var in organization.Input
	if !h.bind(c, &in) {
		return
	}

	org, err := h.orgs.Update(c.Request.Context(), middleware.OrganizationID(c), middleware.UserID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.orgs.Dashboard(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
