package database

import (
	"context"
	"errors"
	"fmt"

	"iso-audit/internal/models"
	"iso-audit/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store: реализация repository.Store поверх gorm/PostgreSQL.
type Store struct {
	db *gorm.DB
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Organizations() repository.OrganizationRepository { return orgRepo{s.db} }
func (s *Store) Users() repository.UserRepository                 { return userRepo{s.db} }
func (s *Store) Assets() repository.AssetRepository               { return assetRepo{s.db} }
func (s *Store) Vulnerabilities() repository.VulnerabilityRepository {
	return vulnRepo{s.db}
}
func (s *Store) Risks() repository.RiskRepository         { return riskRepo{s.db} }
func (s *Store) Controls() repository.ControlRepository   { return controlRepo{s.db} }
func (s *Store) Findings() repository.FindingRepository   { return findingRepo{s.db} }
func (s *Store) Reports() repository.ReportRepository     { return reportRepo{s.db} }
func (s *Store) AuditLogs() repository.AuditLogRepository { return auditLogRepo{s.db} }

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// translate приводит ошибки gorm к ошибкам repository.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	default:
		return err
	}
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ====== организации / пользователи ======

type orgRepo struct{ db *gorm.DB }

func (r orgRepo) Create(ctx context.Context, org *models.Organization) error {
	return translate(r.db.WithContext(ctx).Create(org).Error)
}

func (r orgRepo) Get(ctx context.Context, id uint) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, translate(err)
	}
	return &org, nil
}

func (r orgRepo) Update(ctx context.Context, org *models.Organization) error {
	return affected(r.db.WithContext(ctx).Model(org).
		Select("*").Omit("id", "created_at", "created_by", "deleted_at").
		Updates(org))
}

type userRepo struct{ db *gorm.DB }

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r userRepo) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r userRepo) Update(ctx context.Context, u *models.User) error {
	return affected(r.db.WithContext(ctx).Model(u).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(u))
}

func (r userRepo) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, translate(err)
}

// ====== активы ======

type assetRepo struct{ db *gorm.DB }

func (r assetRepo) Create(ctx context.Context, a *models.Asset) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r assetRepo) Update(ctx context.Context, a *models.Asset) error {
	return affected(r.db.WithContext(ctx).Model(a).
		Where("organization_id = ?", a.OrganizationID).
		Select("*").Omit("id", "organization_id", "created_at", "created_by", "deleted_at").
		Updates(a))
}

func (r assetRepo) Get(ctx context.Context, orgID, id uint) (*models.Asset, error) {
	var a models.Asset
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r assetRepo) List(ctx context.Context, orgID uint) ([]models.Asset, error) {
	var assets []models.Asset
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Order("name").
		Find(&assets).Error
	return assets, translate(err)
}

func (r assetRepo) Deactivate(ctx context.Context, orgID, id uint) error {
	return affected(r.db.WithContext(ctx).Model(&models.Asset{}).
		Where("organization_id = ? AND id = ? AND is_active = ?", orgID, id, true).
		Update("is_active", false))
}

// ====== уязвимости / оценки рисков ======

type vulnRepo struct{ db *gorm.DB }

func (r vulnRepo) List(ctx context.Context) ([]models.Vulnerability, error) {
	var vulns []models.Vulnerability
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code").
		Find(&vulns).Error
	return vulns, translate(err)
}

func (r vulnRepo) Get(ctx context.Context, id uint) (*models.Vulnerability, error) {
	var v models.Vulnerability
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

type riskRepo struct{ db *gorm.DB }

func (r riskRepo) Upsert(ctx context.Context, av *models.AssetVulnerability) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "asset_id"}, {Name: "vulnerability_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"likelihood", "impact", "risk_score", "risk_level",
				"treatment_option", "treatment_notes", "is_accepted",
				"assessed_by", "assessed_at", "updated_at",
			}),
		}).
		Create(av).Error
	return translate(err)
}

func (r riskRepo) Get(ctx context.Context, orgID, id uint) (*models.AssetVulnerability, error) {
	var av models.AssetVulnerability
	err := r.db.WithContext(ctx).
		Preload("Asset").Preload("Vulnerability").
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&av).Error
	if err != nil {
		return nil, translate(err)
	}
	return &av, nil
}

func (r riskRepo) Delete(ctx context.Context, orgID, id uint) error {
	return affected(r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Delete(&models.AssetVulnerability{}))
}

func (r riskRepo) List(ctx context.Context, f repository.RiskFilter) ([]models.AssetVulnerability, error) {
	q := r.db.WithContext(ctx).
		Preload("Asset").Preload("Vulnerability").
		Where("organization_id = ?", f.OrganizationID)
	if f.AssetID != 0 {
		q = q.Where("asset_id = ?", f.AssetID)
	}
	if len(f.Levels) > 0 {
		q = q.Where("risk_level IN ?", f.Levels)
	}

	var risks []models.AssetVulnerability
	err := q.Order("risk_score DESC, id").Find(&risks).Error
	return risks, translate(err)
}

// ====== Annex A ======

type controlRepo struct{ db *gorm.DB }

func (r controlRepo) ListDomains(ctx context.Context) ([]models.IsoDomain, error) {
	var domains []models.IsoDomain
	err := r.db.WithContext(ctx).
		Preload("Controls", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Order("sort_order").
		Find(&domains).Error
	return domains, translate(err)
}

func (r controlRepo) ListControls(ctx context.Context) ([]models.IsoControl, error) {
	var controls []models.IsoControl
	err := r.db.WithContext(ctx).Order("domain_id, sort_order").Find(&controls).Error
	return controls, translate(err)
}

func (r controlRepo) GetControl(ctx context.Context, id uint) (*models.IsoControl, error) {
	var c models.IsoControl
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r controlRepo) UpsertAssessment(ctx context.Context, a *models.ControlAssessment) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "organization_id"}, {Name: "control_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "notes", "implementation_details", "responsible_person",
				"target_date", "reviewed_by", "reviewed_at", "updated_at",
			}),
		}).
		Create(a).Error
	return translate(err)
}

func (r controlRepo) ListAssessments(ctx context.Context, f repository.AssessmentFilter) ([]models.ControlAssessment, error) {
	q := r.db.WithContext(ctx).
		Preload("Control").
		Where("organization_id = ?", f.OrganizationID)
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}

	var out []models.ControlAssessment
	err := q.Order("control_id").Find(&out).Error
	return out, translate(err)
}

// ====== находки ======

type findingRepo struct{ db *gorm.DB }

// Create: ON CONFLICT DO NOTHING по частичным индексам. В PostgreSQL нарушение
// уникальности прерывает транзакцию, поэтому дубль определяем по RowsAffected.
func (r findingRepo) Create(ctx context.Context, f *models.AuditFinding) error {
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(f)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrDuplicate
	}
	return nil
}

func (r findingRepo) Get(ctx context.Context, orgID, id uint) (*models.AuditFinding, error) {
	var f models.AuditFinding
	err := r.db.WithContext(ctx).
		Preload("Asset").Preload("Control").Preload("Vulnerability").
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&f).Error
	if err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (r findingRepo) Update(ctx context.Context, f *models.AuditFinding) error {
	return affected(r.db.WithContext(ctx).Model(f).
		Where("organization_id = ?", f.OrganizationID).
		Select("*").
		Omit(clause.Associations, "id", "organization_id", "created_at", "created_by").
		Updates(f))
}

func (r findingRepo) Delete(ctx context.Context, orgID, id uint) error {
	return affected(r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Delete(&models.AuditFinding{}))
}

func (r findingRepo) List(ctx context.Context, f repository.FindingFilter) ([]models.AuditFinding, error) {
	q := r.db.WithContext(ctx).
		Preload("Asset").Preload("Control").Preload("Vulnerability").
		Where("organization_id = ?", f.OrganizationID)
	if len(f.Sources) > 0 {
		q = q.Where("source IN ?", f.Sources)
	}
	if len(f.Severities) > 0 {
		q = q.Where("severity IN ?", f.Severities)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}

	var out []models.AuditFinding
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, translate(err)
}

// ====== отчёты ======

type reportRepo struct{ db *gorm.DB }

// NextVersion учитывает и удалённые отчёты, чтобы номера не повторялись.
// Строка организации блокируется до конца транзакции: параллельные генерации
// получают номера по очереди.
func (r reportRepo) NextVersion(ctx context.Context, orgID uint) (int, error) {
	db := r.db.WithContext(ctx)
	var org models.Organization
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", orgID).
		Take(&org).Error
	if err != nil {
		return 0, translate(err)
	}

	var next int
	err = db.Unscoped().
		Model(&models.AuditReport{}).
		Where("organization_id = ?", orgID).
		Select("COALESCE(MAX(version), 0) + 1").
		Scan(&next).Error
	return next, translate(err)
}

func (r reportRepo) Create(ctx context.Context, rep *models.AuditReport) error {
	return translate(r.db.WithContext(ctx).Create(rep).Error)
}

func (r reportRepo) Get(ctx context.Context, orgID, id uint) (*models.AuditReport, error) {
	var rep models.AuditReport
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&rep).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rep, nil
}

func (r reportRepo) List(ctx context.Context, orgID uint) ([]models.AuditReport, error) {
	var reports []models.AuditReport
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("version DESC").
		Find(&reports).Error
	return reports, translate(err)
}

func (r reportRepo) UpdateNarrative(ctx context.Context, orgID, id uint, n models.ReportNarrative) error {
	return affected(r.db.WithContext(ctx).Model(&models.AuditReport{}).
		Where("organization_id = ? AND id = ?", orgID, id).
		Updates(map[string]any{
			"title":             n.Title,
			"auditor_name":      n.AuditorName,
			"audit_date":        n.AuditDate,
			"next_audit_date":   n.NextAuditDate,
			"executive_summary": n.ExecutiveSummary,
			"methodology":       n.Methodology,
			"final_opinion":     n.FinalOpinion,
			"opinion_notes":     n.OpinionNotes,
		}))
}

func (r reportRepo) Delete(ctx context.Context, orgID, id uint) error {
	return affected(r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Delete(&models.AuditReport{}))
}

// ====== журнал действий ======

type auditLogRepo struct{ db *gorm.DB }

func (r auditLogRepo) Create(ctx context.Context, l *models.AuditLog) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error)
}

func (r auditLogRepo) List(ctx context.Context, orgID uint, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.AuditLog
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("organization_id = ?", orgID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, translate(err)
}
