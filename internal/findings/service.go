// Package findings: находки аудита: автоматическая генерация из рисков
// и чек-листа, ручное ведение.
package findings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"iso-audit/internal/apperr"
	"iso-audit/internal/metrics"
	"iso-audit/internal/models"
	"iso-audit/internal/repository"
	"iso-audit/internal/scoring"

	"go.uber.org/zap"
)

const (
	fallbackRiskRecommendation    = "Review and implement appropriate security controls to mitigate this vulnerability."
	fallbackControlRecommendation = "Implement the required controls as specified in ISO 27001 Annex A."
)

type Service struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store repository.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// ====== автогенерация ======

func severityForRisk(level scoring.RiskLevel) models.FindingSeverity {
	switch level {
	case scoring.RiskCritical:
		return models.SeverityCritical
	case scoring.RiskHigh:
		return models.SeverityHigh
	case scoring.RiskMedium:
		return models.SeverityMedium
	case scoring.RiskLow:
		return models.SeverityLow
	default:
		return models.SeverityMedium
	}
}

func fromRisk(orgID, userID uint, av models.AssetVulnerability) models.AuditFinding {
	asset, vuln := av.Asset, av.Vulnerability

	recommendation := strings.TrimSpace(vuln.RemediationGuidance)
	if recommendation == "" {
		recommendation = fallbackRiskRecommendation
	}

	assetID, vulnID := av.AssetID, av.VulnerabilityID
	score, likelihood, impact := av.RiskScore, av.Likelihood, av.Impact

	return models.AuditFinding{
		OrganizationID: orgID,
		Title:          fmt.Sprintf("%s detected on %s", vuln.Name, asset.Name),
		Description: fmt.Sprintf(
			"The asset \"%s\" (%s) is exposed to the vulnerability \"%s\" (%s). Risk score: %d/25 with likelihood %d/5 and impact %d/5.",
			asset.Name, asset.Type, vuln.Name, vuln.Code, av.RiskScore, av.Likelihood, av.Impact),
		Severity:        severityForRisk(av.RiskLevel),
		Status:          models.FindingOpen,
		Source:          models.SourceRiskAssessment,
		AffectedAssetID: &assetID,
		VulnerabilityID: &vulnID,
		RiskLevel:       string(av.RiskLevel),
		RiskScore:       &score,
		Likelihood:      &likelihood,
		Impact:          &impact,
		Recommendation:  recommendation,
		CreatedBy:       userID,
	}
}

func fromControl(orgID, userID uint, a models.ControlAssessment) models.AuditFinding {
	control := a.Control

	description := fmt.Sprintf("ISO 27001 control %s \"%s\" has been assessed as Non-Compliant.", control.Code, control.Name)
	if notes := strings.TrimSpace(a.Notes); notes != "" {
		description += " Auditor notes: " + notes
	}

	recommendation := strings.TrimSpace(control.Guidance)
	if recommendation == "" {
		recommendation = fallbackControlRecommendation
	}

	controlID := a.ControlID
	return models.AuditFinding{
		OrganizationID:      orgID,
		Title:               fmt.Sprintf("Non-compliant: %s — %s", control.Code, control.Name),
		Description:         description,
		Severity:            models.SeverityHigh,
		Status:              models.FindingOpen,
		Source:              models.SourceChecklist,
		RelatedControlID:    &controlID,
		Recommendation:      recommendation,
		RemediationOwner:    a.ResponsiblePerson,
		RemediationDeadline: a.TargetDate,
		CreatedBy:           userID,
	}
}

// AutoGenerate создаёт находки по рискам critical/high и по контролям non_compliant.
// Проверка существующих находок и вставка идут в одной транзакции; повторный запуск
// без изменения данных возвращает 0. Дубль, пойманный уникальным индексом, пропускается.
func (s *Service) AutoGenerate(ctx context.Context, orgID, userID uint) (int, error) {
	created := map[models.FindingSource]int{}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Findings().List(ctx, repository.FindingFilter{
			OrganizationID: orgID,
			Sources:        []models.FindingSource{models.SourceRiskAssessment, models.SourceChecklist},
		})
		if err != nil {
			return apperr.Dependency("list findings", err)
		}

		seenVulns := map[uint]bool{}
		seenControls := map[uint]bool{}
		for _, f := range existing {
			if f.Source == models.SourceRiskAssessment && f.VulnerabilityID != nil {
				seenVulns[*f.VulnerabilityID] = true
			}
			if f.Source == models.SourceChecklist && f.RelatedControlID != nil {
				seenControls[*f.RelatedControlID] = true
			}
		}

		risks, err := tx.Risks().List(ctx, repository.RiskFilter{
			OrganizationID: orgID,
			Levels:         []scoring.RiskLevel{scoring.RiskCritical, scoring.RiskHigh},
		})
		if err != nil {
			return apperr.Dependency("list risks", err)
		}

		nonCompliant, err := tx.Controls().ListAssessments(ctx, repository.AssessmentFilter{
			OrganizationID: orgID,
			Statuses:       []models.ControlStatus{models.ControlNonCompliant},
		})
		if err != nil {
			return apperr.Dependency("list control assessments", err)
		}

		insert := func(f models.AuditFinding) (bool, error) {
			err := tx.Findings().Create(ctx, &f)
			if errors.Is(err, repository.ErrDuplicate) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			return true, nil
		}

		for _, av := range risks {
			if av.Asset.ID == 0 || av.Vulnerability.ID == 0 || seenVulns[av.VulnerabilityID] {
				continue
			}
			seenVulns[av.VulnerabilityID] = true

			ok, err := insert(fromRisk(orgID, userID, av))
			if err != nil {
				return err
			}
			if ok {
				created[models.SourceRiskAssessment]++
			}
		}

		sort.Slice(nonCompliant, func(i, j int) bool { return nonCompliant[i].ControlID < nonCompliant[j].ControlID })
		for _, a := range nonCompliant {
			if a.Control.ID == 0 || seenControls[a.ControlID] {
				continue
			}
			seenControls[a.ControlID] = true

			ok, err := insert(fromControl(orgID, userID, a))
			if err != nil {
				return err
			}
			if ok {
				created[models.SourceChecklist]++
			}
		}

		total := created[models.SourceRiskAssessment] + created[models.SourceChecklist]
		if total == 0 {
			return nil
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "finding", 0, "generate",
			fmt.Sprintf("Автоматически создано находок: %d (риски: %d, чек-лист: %d)",
				total, created[models.SourceRiskAssessment], created[models.SourceChecklist]))
	})
	if err != nil {
		return 0, apperr.FromStore(err, "находки")
	}

	for source, n := range created {
		metrics.FindingsGenerated(string(source), n)
	}
	total := created[models.SourceRiskAssessment] + created[models.SourceChecklist]

	s.log.Info("findings generated",
		zap.Uint("organization_id", orgID),
		zap.Int("count", total),
		zap.Int("from_risks", created[models.SourceRiskAssessment]),
		zap.Int("from_checklist", created[models.SourceChecklist]),
	)
	return total, nil
}

// ====== ручное ведение ======

type CreateInput struct {
	Title       string                 `json:"title" validate:"required,max=500"`
	Description string                 `json:"description" validate:"required"`
	Severity    models.FindingSeverity `json:"severity" validate:"required,oneof=critical high medium low informational"`
	// risk_assessment и checklist зарезервированы за AutoGenerate
	Source models.FindingSource `json:"source" validate:"omitempty,oneof=manual ai_generated"`

	AffectedAssetID  *uint `json:"affected_asset_id"`
	RelatedControlID *uint `json:"related_control_id"`
	VulnerabilityID  *uint `json:"vulnerability_id"`

	RiskLevel  string `json:"risk_level" validate:"omitempty,oneof=critical high medium low negligible"`
	RiskScore  *int   `json:"risk_score" validate:"omitempty,min=1,max=25"`
	Likelihood *int   `json:"likelihood" validate:"omitempty,min=1,max=5"`
	Impact     *int   `json:"impact" validate:"omitempty,min=1,max=5"`

	Recommendation      string     `json:"recommendation"`
	RemediationDeadline *time.Time `json:"remediation_deadline"`
	RemediationOwner    string     `json:"remediation_owner" validate:"max=255"`

	AIExplanation string `json:"ai_explanation"`
}

// checkRefs: ссылки на актив/контроль/уязвимость должны существовать и принадлежать организации.
func checkRefs(ctx context.Context, tx repository.Store, orgID uint, assetID, controlID, vulnID *uint) error {
	if assetID != nil {
		if _, err := tx.Assets().Get(ctx, orgID, *assetID); err != nil {
			return apperr.FromStore(err, "актив")
		}
	}
	if controlID != nil {
		if _, err := tx.Controls().GetControl(ctx, *controlID); err != nil {
			return apperr.FromStore(err, "контроль")
		}
	}
	if vulnID != nil {
		if _, err := tx.Vulnerabilities().Get(ctx, *vulnID); err != nil {
			return apperr.FromStore(err, "уязвимость")
		}
	}
	return nil
}

func (s *Service) CreateManual(ctx context.Context, orgID, userID uint, in CreateInput) (*models.AuditFinding, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}
	if in.Source == "" {
		in.Source = models.SourceManual
	}

	f := models.AuditFinding{
		OrganizationID:      orgID,
		Title:               in.Title,
		Description:         in.Description,
		Severity:            in.Severity,
		Status:              models.FindingOpen,
		Source:              in.Source,
		AffectedAssetID:     in.AffectedAssetID,
		RelatedControlID:    in.RelatedControlID,
		VulnerabilityID:     in.VulnerabilityID,
		RiskLevel:           in.RiskLevel,
		RiskScore:           in.RiskScore,
		Likelihood:          in.Likelihood,
		Impact:              in.Impact,
		Recommendation:      in.Recommendation,
		RemediationDeadline: in.RemediationDeadline,
		RemediationOwner:    in.RemediationOwner,
		AIGenerated:         in.Source == models.SourceAIGenerated,
		AIExplanation:       in.AIExplanation,
		CreatedBy:           userID,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := checkRefs(ctx, tx, orgID, f.AffectedAssetID, f.RelatedControlID, f.VulnerabilityID); err != nil {
			return err
		}
		if err := tx.Findings().Create(ctx, &f); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "finding", f.ID, "create", "Создана находка: "+f.Title)
	})
	if err != nil {
		return nil, apperr.FromStore(err, "находка")
	}

	s.log.Info("finding created", zap.Uint("organization_id", orgID), zap.Uint("finding_id", f.ID))
	return &f, nil
}

// UpdateInput: частичное обновление: nil-поля не меняются.
type UpdateInput struct {
	Title       *string                 `json:"title" validate:"omitempty,max=500"`
	Description *string                 `json:"description"`
	Severity    *models.FindingSeverity `json:"severity" validate:"omitempty,oneof=critical high medium low informational"`
	Status      *models.FindingStatus   `json:"status" validate:"omitempty,oneof=open in_progress resolved accepted closed"`

	Recommendation      *string    `json:"recommendation"`
	RemediationDeadline *time.Time `json:"remediation_deadline"`
	RemediationOwner    *string    `json:"remediation_owner" validate:"omitempty,max=255"`
	RemediationNotes    *string    `json:"remediation_notes"`
	AssignedTo          *uint      `json:"assigned_to"`
}

func (s *Service) Update(ctx context.Context, orgID, userID, id uint, in UpdateInput) (*models.AuditFinding, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.Validation("title", "поле title обязательно")
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		return nil, apperr.Validation("description", "поле description обязательно")
	}
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	var f *models.AuditFinding
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		f, err = tx.Findings().Get(ctx, orgID, id)
		if err != nil {
			return err
		}

		if in.Title != nil {
			f.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			f.Description = strings.TrimSpace(*in.Description)
		}
		if in.Severity != nil {
			f.Severity = *in.Severity
		}
		if in.Status != nil && *in.Status != f.Status {
			f.Status = *in.Status
			switch f.Status {
			case models.FindingResolved:
				now := s.now()
				f.ResolvedAt = &now
			case models.FindingOpen, models.FindingInProgress:
				f.ResolvedAt = nil
			}
		}
		if in.Recommendation != nil {
			f.Recommendation = *in.Recommendation
		}
		if in.RemediationDeadline != nil {
			f.RemediationDeadline = in.RemediationDeadline
		}
		if in.RemediationOwner != nil {
			f.RemediationOwner = *in.RemediationOwner
		}
		if in.RemediationNotes != nil {
			f.RemediationNotes = *in.RemediationNotes
		}
		if in.AssignedTo != nil {
			f.AssignedTo = in.AssignedTo
		}

		if err := tx.Findings().Update(ctx, f); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "finding", f.ID, "update",
			fmt.Sprintf("Изменена находка: %s (%s)", f.Title, f.Status))
	})
	if err != nil {
		return nil, apperr.FromStore(err, "находка")
	}

	s.log.Info("finding updated", zap.Uint("organization_id", orgID), zap.Uint("finding_id", id))
	return f, nil
}

func (s *Service) Delete(ctx context.Context, orgID, userID, id uint) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Findings().Delete(ctx, orgID, id); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "finding", id, "delete", "Удалена находка")
	})
	if err != nil {
		return apperr.FromStore(err, "находка")
	}

	s.log.Info("finding deleted", zap.Uint("organization_id", orgID), zap.Uint("finding_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, orgID, id uint) (*models.AuditFinding, error) {
	f, err := s.store.Findings().Get(ctx, orgID, id)
	if err != nil {
		return nil, apperr.FromStore(err, "находка")
	}
	return f, nil
}

type Filter struct {
	Sources    []models.FindingSource
	Severities []models.FindingSeverity
	Statuses   []models.FindingStatus
}

func (s *Service) List(ctx context.Context, orgID uint, f Filter) ([]models.AuditFinding, error) {
	list, err := s.store.Findings().List(ctx, repository.FindingFilter{
		OrganizationID: orgID,
		Sources:        f.Sources,
		Severities:     f.Severities,
		Statuses:       f.Statuses,
	})
	if err != nil {
		return nil, apperr.FromStore(err, "находки")
	}
	return list, nil
}

// ====== статистика ======

type Stats struct {
	Total         int `json:"total"`
	Critical      int `json:"critical"`
	High          int `json:"high"`
	Medium        int `json:"medium"`
	Low           int `json:"low"`
	Informational int `json:"informational"`

	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Accepted   int `json:"accepted"`
	Closed     int `json:"closed"`
}

func CountFindings(list []models.AuditFinding) Stats {
	var st Stats
	for _, f := range list {
		st.Total++
		switch f.Severity {
		case models.SeverityCritical:
			st.Critical++
		case models.SeverityHigh:
			st.High++
		case models.SeverityMedium:
			st.Medium++
		case models.SeverityLow:
			st.Low++
		case models.SeverityInformational:
			st.Informational++
		}
		switch f.Status {
		case models.FindingOpen:
			st.Open++
		case models.FindingInProgress:
			st.InProgress++
		case models.FindingResolved:
			st.Resolved++
		case models.FindingAccepted:
			st.Accepted++
		case models.FindingClosed:
			st.Closed++
		}
	}
	return st
}

func (s *Service) Stats(ctx context.Context, orgID uint) (Stats, error) {
	list, err := s.store.Findings().List(ctx, repository.FindingFilter{OrganizationID: orgID})
	if err != nil {
		return Stats{}, apperr.Dependency("finding stats", err)
	}
	return CountFindings(list), nil
}
