package server

import (
	"net/http"

	"iso-audit/internal/config"
	"iso-audit/internal/handlers"
	"iso-audit/internal/middleware"
	"iso-audit/internal/models"
	"iso-audit/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const sessionName = "audit_session"

func NewRouter(cfg *config.Config, store repository.Store, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(log))

	cookies := cookie.NewStore([]byte(cfg.SessionSecret))
	cookies.Options(sessions.Options{
		Path:     "/",
		MaxAge:   12 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.Production,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, cookies))
	r.Use(middleware.InjectUser(store))

	h := handlers.New(store, log)

	// HEALTHCHECK / МЕТРИКИ
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// AUTH
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)

	auth := api.Group("/")
	auth.Use(middleware.RequireAuth())
	auth.GET("/auth/me", h.Me)

	// организацию создаёт любой вошедший пользователь без организации
	auth.POST("/organization", h.CreateOrganization)

	org := auth.Group("/")
	org.Use(middleware.RequireOrganization())

	editors := middleware.RequireRole(models.RoleAdmin, models.RoleAuditor)

	// ОРГАНИЗАЦИЯ
	org.GET("/organization", h.GetOrganization)
	org.PUT("/organization", editors, h.UpdateOrganization)
	org.GET("/dashboard", h.Dashboard)

	// АКТИВЫ
	org.GET("/assets", h.ListAssets)
	org.POST("/assets", editors, h.CreateAsset)
	org.GET("/assets/:id", h.GetAsset)
	org.PUT("/assets/:id", editors, h.UpdateAsset)
	org.DELETE("/assets/:id", editors, h.DeleteAsset)
	org.POST("/assets/:id/vulnerabilities", editors, h.AssessAssetVulnerability)

	// РИСКИ
	org.GET("/vulnerabilities", h.ListVulnerabilities)
	org.GET("/risks", h.ListRisks)
	org.GET("/risks/matrix", h.RiskMatrix)
	org.DELETE("/risks/:id", editors, h.DeleteRisk)

	// ЧЕК-ЛИСТ ISO 27001
	org.GET("/checklist", h.GetChecklist)
	org.PUT("/checklist/:control_id", editors, h.AssessControl)
	org.GET("/compliance", h.ComplianceStats)

	// НАХОДКИ
	org.GET("/findings", h.ListFindings)
	org.POST("/findings", editors, h.CreateFinding)
	org.POST("/findings/generate", editors, h.GenerateFindings)
	org.GET("/findings/stats", h.FindingStats)
	org.GET("/findings/:id", h.GetFinding)
	org.PATCH("/findings/:id", editors, h.UpdateFinding)
	org.DELETE("/findings/:id", editors, h.DeleteFinding)

	// ОТЧЁТЫ
	org.GET("/reports", h.ListReports)
	org.POST("/reports", editors, h.GenerateReport)
	org.GET("/reports/:id", h.GetReport)
	org.PATCH("/reports/:id", editors, h.UpdateReport)
	org.DELETE("/reports/:id", middleware.RequireRole(models.RoleAdmin), h.DeleteReport)

	// ЖУРНАЛ
	org.GET("/activity",
		middleware.RequireRole(models.RoleAdmin, models.RoleViewer),
		h.ListActivity,
	)

	return r
}
