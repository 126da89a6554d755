package database

import (
	"context"
	"fmt"
	"time"

	"iso-audit/internal/config"
	"iso-audit/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open подключается к PostgreSQL с повторными попытками (БД в docker-compose поднимается не сразу).
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	attempts := cfg.DBConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for i := 1; i <= attempts; i++ {
		log.Info("connecting to database", zap.Int("attempt", i), zap.Int("max_attempts", attempts))

		db, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			log.Info("connected to database")
			return db, nil
		}

		log.Warn("failed to connect to database", zap.Error(err))
		if i < attempts {
			time.Sleep(2 * time.Second)
		}
	}

	return nil, fmt.Errorf("connect to db after %d attempts: %w", attempts, err)
}

// Migrate: схема + частичные уникальные индексы для автоматически созданных находок.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Asset{},
		&models.Vulnerability{},
		&models.AssetVulnerability{},
		&models.IsoDomain{},
		&models.IsoControl{},
		&models.ControlAssessment{},
		&models.AuditFinding{},
		&models.AuditReport{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// одна находка на уязвимость / контроль в рамках организации
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_findings_risk_origin
			ON audit_findings (organization_id, vulnerability_id)
			WHERE source = 'risk_assessment'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_findings_checklist_origin
			ON audit_findings (organization_id, related_control_id)
			WHERE source = 'checklist'`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// EnsureAdmin: админ только из кода/конфига, создаётся один раз.
func EnsureAdmin(ctx context.Context, store *Store, cfg *config.Config, log *zap.Logger) error {
	count, err := store.Users().CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Username:     cfg.AdminUsername,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := store.Users().Create(ctx, &admin); err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	log.Info("created default admin user", zap.String("username", admin.Username))
	return nil
}
