package handlers

import (
	"errors"
	"strconv"
	"strings"

	"iso-audit/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail отдаёт ошибку клиенту в едином виде {"error": {...}}.
// Внутренние подробности в ответ не попадают, только в лог.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	_ = c.Error(err)

	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind == apperr.KindInternal {
		h.log.Error("internal error", zap.String("route", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": apperr.Error{Kind: apperr.KindInternal, Message: "внутренняя ошибка сервера"}})
		return
	}
	if ae.Kind == apperr.KindDependency {
		h.log.Error("dependency failure", zap.String("route", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": ae})
}

// bind читает JSON-тело. Проверку полей делают сервисы.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperr.Validation("body", "некорректный JSON: "+err.Error()))
		return false
	}
	return true
}

func (h *Handler) paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.fail(c, apperr.Validation(name, "некорректный идентификатор"))
		return 0, false
	}
	return uint(id), true
}

// queryList поддерживает и ?level=high&level=low, и ?level=high,low.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func convertList[T ~string](in []string) []T {
	if len(in) == 0 {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = T(v)
	}
	return out
}
