package middleware

import (
	"errors"
	"net/http"

	"iso-audit/internal/models"
	"iso-audit/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "CurrentUser"

// InjectUser загружает пользователя из сессии и держит роль и организацию
// в сессии в согласии с базой (они меняются, например, при создании организации).
func InjectUser(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		uid, ok := sess.Get(SessionUserID).(uint)
		if !ok || uid == 0 {
			c.Next()
			return
		}

		user, err := store.Users().Get(c.Request.Context(), uid)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			sess.Clear()
			_ = sess.Save()
			c.Next()
			return
		case err != nil:
			_ = c.Error(err)
			abortJSON(c, http.StatusBadGateway, "dependency", "хранилище недоступно")
			return
		}

		if syncSession(sess, user) {
			_ = sess.Save()
		}
		c.Set(currentUserKey, *user)
		c.Next()
	}
}

// SetSession записывает пользователя в сессию (вход, создание организации).
func SetSession(sess sessions.Session, user *models.User) {
	sess.Set(SessionUserID, user.ID)
	syncSession(sess, user)
}

func syncSession(sess sessions.Session, user *models.User) bool {
	changed := false
	if role, _ := sess.Get(SessionRole).(string); role != string(user.Role) {
		sess.Set(SessionRole, string(user.Role))
		changed = true
	}

	orgID, _ := sess.Get(SessionOrganizationID).(uint)
	switch {
	case user.OrganizationID == nil && orgID != 0:
		sess.Delete(SessionOrganizationID)
		changed = true
	case user.OrganizationID != nil && *user.OrganizationID != orgID:
		sess.Set(SessionOrganizationID, *user.OrganizationID)
		changed = true
	}
	return changed
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
