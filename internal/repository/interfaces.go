// Package repository описывает границу с реляционным хранилищем.
// Все чтения и записи данных организации параметризованы organizationID.
package repository

import (
	"context"
	"errors"

	"iso-audit/internal/models"
	"iso-audit/internal/scoring"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store: набор репозиториев. Transaction выполняет fn атомарно:
// при ошибке из fn ни одна запись не сохраняется.
type Store interface {
	Organizations() OrganizationRepository
	Users() UserRepository
	Assets() AssetRepository
	Vulnerabilities() VulnerabilityRepository
	Risks() RiskRepository
	Controls() ControlRepository
	Findings() FindingRepository
	Reports() ReportRepository
	AuditLogs() AuditLogRepository

	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	Get(ctx context.Context, id uint) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
}

type AssetRepository interface {
	Create(ctx context.Context, a *models.Asset) error
	Update(ctx context.Context, a *models.Asset) error
	Get(ctx context.Context, orgID, id uint) (*models.Asset, error)
	// List: только активные активы (is_active = true).
	List(ctx context.Context, orgID uint) ([]models.Asset, error)
	Deactivate(ctx context.Context, orgID, id uint) error
}

type VulnerabilityRepository interface {
	List(ctx context.Context) ([]models.Vulnerability, error)
	Get(ctx context.Context, id uint) (*models.Vulnerability, error)
}

type RiskFilter struct {
	OrganizationID uint
	AssetID        uint
	Levels         []scoring.RiskLevel
}

type RiskRepository interface {
	// Upsert: вставка или замена по ключу (asset_id, vulnerability_id). Заполняет av.ID.
	Upsert(ctx context.Context, av *models.AssetVulnerability) error
	Get(ctx context.Context, orgID, id uint) (*models.AssetVulnerability, error)
	Delete(ctx context.Context, orgID, id uint) error
	// List подгружает Asset и Vulnerability.
	List(ctx context.Context, f RiskFilter) ([]models.AssetVulnerability, error)
}

type AssessmentFilter struct {
	OrganizationID uint
	Statuses       []models.ControlStatus
}

type ControlRepository interface {
	ListDomains(ctx context.Context) ([]models.IsoDomain, error)
	ListControls(ctx context.Context) ([]models.IsoControl, error)
	GetControl(ctx context.Context, id uint) (*models.IsoControl, error)
	// UpsertAssessment: вставка или замена по ключу (organization_id, control_id).
	UpsertAssessment(ctx context.Context, a *models.ControlAssessment) error
	// ListAssessments подгружает Control.
	ListAssessments(ctx context.Context, f AssessmentFilter) ([]models.ControlAssessment, error)
}

type FindingFilter struct {
	OrganizationID uint
	Sources        []models.FindingSource
	Severities     []models.FindingSeverity
	Statuses       []models.FindingStatus
}

type FindingRepository interface {
	// Create возвращает ErrDuplicate, если источник (уязвимость / контроль)
	// уже представлен находкой; транзакция при этом не прерывается.
	Create(ctx context.Context, f *models.AuditFinding) error
	Get(ctx context.Context, orgID, id uint) (*models.AuditFinding, error)
	Update(ctx context.Context, f *models.AuditFinding) error
	Delete(ctx context.Context, orgID, id uint) error
	List(ctx context.Context, f FindingFilter) ([]models.AuditFinding, error)
}

type ReportRepository interface {
	// NextVersion блокирует организацию до конца транзакции; вызывать внутри Transaction.
	NextVersion(ctx context.Context, orgID uint) (int, error)
	// Create возвращает ErrDuplicate, если номер версии уже занят.
	Create(ctx context.Context, r *models.AuditReport) error
	Get(ctx context.Context, orgID, id uint) (*models.AuditReport, error)
	List(ctx context.Context, orgID uint) ([]models.AuditReport, error)
	// UpdateNarrative пишет только поля ReportNarrative, снимок не трогает.
	UpdateNarrative(ctx context.Context, orgID, id uint, n models.ReportNarrative) error
	Delete(ctx context.Context, orgID, id uint) error
}

type AuditLogRepository interface {
	Create(ctx context.Context, l *models.AuditLog) error
	List(ctx context.Context, orgID uint, limit int) ([]models.AuditLog, error)
}
