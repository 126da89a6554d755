package middleware

import (
	"net/http"

	"iso-audit/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ключи cookie-сессии
const (
	SessionUserID         = "user_id"
	SessionRole           = "role"
	SessionOrganizationID = "organization_id"
)

const organizationKey = "OrganizationID"

func abortJSON(c *gin.Context, status int, kind, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"kind": kind, "message": msg}})
}

// RequireAuth пропускает только запросы с пользователем, найденным InjectUser.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "требуется вход в систему")
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "требуется вход в систему")
			return
		}
		if _, ok := roleSet[user.Role]; !ok {
			abortJSON(c, http.StatusForbidden, "forbidden", "недостаточно прав")
			return
		}
		c.Next()
	}
}

// RequireOrganization берёт организацию из сессии. Из тела запроса она не читается никогда.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		orgID, ok := sess.Get(SessionOrganizationID).(uint)
		if !ok || orgID == 0 {
			abortJSON(c, http.StatusForbidden, "forbidden", "сначала создайте организацию")
			return
		}
		c.Set(organizationKey, orgID)
		c.Next()
	}
}

// OrganizationID: организация текущего запроса (после RequireOrganization).
func OrganizationID(c *gin.Context) uint {
	return c.GetUint(organizationKey)
}

// UserID: id текущего пользователя или 0.
func UserID(c *gin.Context) uint {
	user, ok := CurrentUser(c)
	if !ok {
		return 0
	}
	return user.ID
}
