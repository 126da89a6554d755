package handlers

import (
	"errors"
	"net/http"
	"strings"

	"iso-audit/internal/apperr"
	"iso-audit/internal/middleware"
	"iso-audit/internal/models"
	"iso-audit/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type userView struct {
	ID             uint            `json:"id"`
	Username       string          `json:"username"`
	Role           models.UserRole `json:"role"`
	OrganizationID *uint           `json:"organization_id"`
}

func viewUser(u models.User) userView {
	return userView{ID: u.ID, Username: u.Username, Role: u.Role, OrganizationID: u.OrganizationID}
}

type registerForm struct {
	Username string          `json:"username" validate:"required,min=3,max=50"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	Role     models.UserRole `json:"role" validate:"required,oneof=auditor viewer"`
}

// Register: самостоятельно можно зарегистрироваться только аудитором или наблюдателем.
// Администратором пользователь становится, создав организацию.
func (h *Handler) Register(c *gin.Context) {
	var form registerForm
	if !h.bind(c, &form) {
		return
	}
	form.Username = strings.TrimSpace(form.Username)
	if err := apperr.Validate(form); err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.Users().GetByUsername(ctx, form.Username); err == nil {
		h.fail(c, apperr.Conflict("пользователь уже существует"))
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		h.fail(c, apperr.FromStore(err, "пользователь"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		h.fail(c, apperr.Internal("хеширование пароля", err))
		return
	}
	user := models.User{
		Username:     form.Username,
		PasswordHash: string(hash),
		Role:         form.Role,
	}
	if err := h.store.Users().Create(ctx, &user); err != nil {
		h.fail(c, apperr.FromStore(err, "пользователь"))
		return
	}

	h.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, viewUser(user))
}

type loginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if !h.bind(c, &form) {
		return
	}

	user, err := h.store.Users().GetByUsername(c.Request.Context(), strings.TrimSpace(form.Username))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.fail(c, apperr.FromStore(err, "пользователь"))
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)) != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"kind": "unauthorized", "message": "неверный логин или пароль"}})
		return
	}

	sess := sessions.Default(c)
	middleware.SetSession(sess, user)
	if err := sess.Save(); err != nil {
		h.fail(c, apperr.Internal("сохранение сессии", err))
		return
	}
	c.JSON(http.StatusOK, viewUser(*user))
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, viewUser(user))
}
