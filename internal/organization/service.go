// Package organization: профиль проверяемой организации и сводка для дашборда.
package organization

import (
	"context"
	"strings"
	"time"

	"iso-audit/internal/apperr"
	"iso-audit/internal/models"
	"iso-audit/internal/repository"
	"iso-audit/internal/scoring"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Input struct {
	Name          string   `json:"name" validate:"required,max=255"`
	Description   string   `json:"description"`
	Sector        string   `json:"sector" validate:"max=50"`
	EmployeeCount *int     `json:"employee_count" validate:"omitempty,min=0"`
	Website       string   `json:"website" validate:"max=255"`
	Address       string   `json:"address"`
	Country       string   `json:"country" validate:"max=100"`
	ContactName   string   `json:"contact_name" validate:"max=255"`
	ContactEmail  string   `json:"contact_email" validate:"omitempty,email"`
	ContactPhone  string   `json:"contact_phone" validate:"max=50"`
	SystemTypes   []string `json:"system_types"`

	ExposureLevel models.ExposureLevel `json:"exposure_level" validate:"omitempty,oneof=internet_facing internal restricted air_gapped"`
	RiskAppetite  string               `json:"risk_appetite" validate:"omitempty,oneof=low medium high"`

	ScopeDescription string     `json:"scope_description"`
	AuditPeriodStart *time.Time `json:"audit_period_start"`
	AuditPeriodEnd   *time.Time `json:"audit_period_end"`
}

func (in Input) validate() error {
	if err := apperr.Validate(in); err != nil {
		return err
	}
	if in.AuditPeriodStart != nil && in.AuditPeriodEnd != nil && in.AuditPeriodEnd.Before(*in.AuditPeriodStart) {
		return apperr.Validation("audit_period_end", "окончание периода аудита раньше начала")
	}
	return nil
}

func (in Input) apply(org *models.Organization) {
	org.Name = strings.TrimSpace(in.Name)
	org.Description = in.Description
	org.Sector = in.Sector
	org.EmployeeCount = in.EmployeeCount
	org.Website = in.Website
	org.Address = in.Address
	org.Country = in.Country
	org.ContactName = in.ContactName
	org.ContactEmail = in.ContactEmail
	org.ContactPhone = in.ContactPhone
	org.SystemTypes = in.SystemTypes
	org.ExposureLevel = in.ExposureLevel
	org.RiskAppetite = in.RiskAppetite
	if org.RiskAppetite == "" {
		org.RiskAppetite = "medium"
	}
	org.ScopeDescription = in.ScopeDescription
	org.AuditPeriodStart = in.AuditPeriodStart
	org.AuditPeriodEnd = in.AuditPeriodEnd
}

type Service struct {
	store repository.Store
	log   *zap.Logger
}

func NewService(store repository.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// Create создаёт организацию и делает создателя её администратором.
// Пользователь, уже привязанный к организации, вторую создать не может.
func (s *Service) Create(ctx context.Context, userID uint, in Input) (*models.Organization, *models.User, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	var (
		org  models.Organization
		user *models.User
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.Users().Get(ctx, userID)
		if err != nil {
			return apperr.FromStore(err, "пользователь")
		}
		if user.OrganizationID != nil {
			return apperr.Conflict("пользователь уже привязан к организации")
		}

		in.apply(&org)
		org.CreatedBy = userID
		if err := tx.Organizations().Create(ctx, &org); err != nil {
			return err
		}

		user.OrganizationID = &org.ID
		user.Role = models.RoleAdmin
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, org.ID, userID, "organization", org.ID, "create", "Создана организация: "+org.Name)
	})
	if err != nil {
		return nil, nil, apperr.FromStore(err, "организация")
	}

	s.log.Info("organization created", zap.Uint("organization_id", org.ID), zap.Uint("user_id", userID))
	return &org, user, nil
}

func (s *Service) Update(ctx context.Context, orgID, userID uint, in Input) (*models.Organization, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var org *models.Organization
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		org, err = tx.Organizations().Get(ctx, orgID)
		if err != nil {
			return err
		}
		in.apply(org)
		if err := tx.Organizations().Update(ctx, org); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "organization", orgID, "update", "Изменён профиль организации")
	})
	if err != nil {
		return nil, apperr.FromStore(err, "организация")
	}

	s.log.Info("organization updated", zap.Uint("organization_id", orgID))
	return org, nil
}

func (s *Service) Get(ctx context.Context, orgID uint) (*models.Organization, error) {
	org, err := s.store.Organizations().Get(ctx, orgID)
	if err != nil {
		return nil, apperr.FromStore(err, "организация")
	}
	return org, nil
}

// ====== дашборд ======

type LevelCount struct {
	Level scoring.RiskLevel `json:"level"`
	Count int               `json:"count"`
}

type TypeCount struct {
	Type  models.AssetType `json:"type"`
	Count int              `json:"count"`
}

type Dashboard struct {
	TotalAssets          int          `json:"total_assets"`
	CriticalAssets       int          `json:"critical_assets"`
	TotalVulnerabilities int          `json:"total_vulnerabilities"`
	HighRisks            int          `json:"high_risks"`
	RiskDistribution     []LevelCount `json:"risk_distribution"`
	AssetsByType         []TypeCount  `json:"assets_by_type"`
}

// BuildDashboard: распределение рисков по всем пяти уровням, типы активов, только непустые.
func BuildDashboard(assets []models.Asset, risks []models.AssetVulnerability) Dashboard {
	d := Dashboard{
		RiskDistribution: make([]LevelCount, 0, len(scoring.RiskLevels)),
		AssetsByType:     []TypeCount{},
	}

	byType := map[models.AssetType]int{}
	for _, a := range assets {
		if !a.IsActive {
			continue
		}
		d.TotalAssets++
		byType[a.Type]++
		if scoring.AssetCriticality(a.Confidentiality, a.Integrity, a.Availability).Level == scoring.CriticalityCritical {
			d.CriticalAssets++
		}
	}
	for _, t := range models.AssetTypes {
		if n := byType[t]; n > 0 {
			d.AssetsByType = append(d.AssetsByType, TypeCount{Type: t, Count: n})
		}
	}

	byLevel := map[scoring.RiskLevel]int{}
	for _, av := range risks {
		level := scoring.AssessRisk(av.Likelihood, av.Impact).Level
		byLevel[level]++
		d.TotalVulnerabilities++
		if level == scoring.RiskCritical || level == scoring.RiskHigh {
			d.HighRisks++
		}
	}
	for _, l := range scoring.RiskLevels {
		d.RiskDistribution = append(d.RiskDistribution, LevelCount{Level: l, Count: byLevel[l]})
	}
	return d
}

func (s *Service) Dashboard(ctx context.Context, orgID uint) (*Dashboard, error) {
	var (
		assets []models.Asset
		risks  []models.AssetVulnerability
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assets, err = s.store.Assets().List(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		risks, err = s.store.Risks().List(gctx, repository.RiskFilter{OrganizationID: orgID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Dependency("dashboard", err)
	}

	d := BuildDashboard(assets, risks)
	return &d, nil
}
