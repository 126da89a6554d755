// Package reports: версии отчёта аудита с замороженным снимком показателей.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"iso-audit/internal/apperr"
	"iso-audit/internal/compliance"
	"iso-audit/internal/findings"
	"iso-audit/internal/metrics"
	"iso-audit/internal/models"
	"iso-audit/internal/repository"
	"iso-audit/internal/scoring"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Narrative: редактируемые поля отчёта (при генерации и при последующей правке).
type Narrative struct {
	Title            string              `json:"title" validate:"required,max=500"`
	AuditorName      string              `json:"auditor_name" validate:"required,max=255"`
	AuditDate        *time.Time          `json:"audit_date" validate:"required"`
	NextAuditDate    *time.Time          `json:"next_audit_date"`
	ExecutiveSummary string              `json:"executive_summary"`
	Methodology      string              `json:"methodology"`
	FinalOpinion     models.FinalOpinion `json:"final_opinion" validate:"required,oneof=certified conditional not_certified"`
	OpinionNotes     string              `json:"opinion_notes"`
}

func (n Narrative) normalize() Narrative {
	n.Title = strings.TrimSpace(n.Title)
	n.AuditorName = strings.TrimSpace(n.AuditorName)
	return n
}

func (n Narrative) model() models.ReportNarrative {
	return models.ReportNarrative{
		Title:            n.Title,
		AuditorName:      n.AuditorName,
		AuditDate:        n.AuditDate,
		NextAuditDate:    n.NextAuditDate,
		ExecutiveSummary: n.ExecutiveSummary,
		Methodology:      n.Methodology,
		FinalOpinion:     n.FinalOpinion,
		OpinionNotes:     n.OpinionNotes,
	}
}

func narrativeOf(m models.ReportNarrative) Narrative {
	return Narrative{
		Title:            m.Title,
		AuditorName:      m.AuditorName,
		AuditDate:        m.AuditDate,
		NextAuditDate:    m.NextAuditDate,
		ExecutiveSummary: m.ExecutiveSummary,
		Methodology:      m.Methodology,
		FinalOpinion:     m.FinalOpinion,
		OpinionNotes:     m.OpinionNotes,
	}
}

// NarrativeUpdate: частичная правка текста отчёта: nil-поля не меняются.
type NarrativeUpdate struct {
	Title            *string              `json:"title"`
	AuditorName      *string              `json:"auditor_name"`
	AuditDate        *time.Time           `json:"audit_date"`
	NextAuditDate    *time.Time           `json:"next_audit_date"`
	ExecutiveSummary *string              `json:"executive_summary"`
	Methodology      *string              `json:"methodology"`
	FinalOpinion     *models.FinalOpinion `json:"final_opinion"`
	OpinionNotes     *string              `json:"opinion_notes"`
}

func (u NarrativeUpdate) apply(n Narrative) Narrative {
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.AuditorName != nil {
		n.AuditorName = *u.AuditorName
	}
	if u.AuditDate != nil {
		n.AuditDate = u.AuditDate
	}
	if u.NextAuditDate != nil {
		n.NextAuditDate = u.NextAuditDate
	}
	if u.ExecutiveSummary != nil {
		n.ExecutiveSummary = *u.ExecutiveSummary
	}
	if u.Methodology != nil {
		n.Methodology = *u.Methodology
	}
	if u.FinalOpinion != nil {
		n.FinalOpinion = *u.FinalOpinion
	}
	if u.OpinionNotes != nil {
		n.OpinionNotes = *u.OpinionNotes
	}
	return n
}

type Service struct {
	store      repository.Store
	compliance *compliance.Service
	log        *zap.Logger
	now        func() time.Time
}

func NewService(store repository.Store, comp *compliance.Service, log *zap.Logger) *Service {
	return &Service{store: store, compliance: comp, log: log, now: time.Now}
}

// ====== снимок ======

type SnapshotInput struct {
	Organization models.Organization
	Assets       []models.Asset
	Risks        []models.AssetVulnerability
	Compliance   compliance.Stats
	Findings     []models.AuditFinding
}

// BuildSnapshot: чистая функция: уровни критичности и риска пересчитываются
// из исходных оценок, а не берутся из сохранённых полей.
func BuildSnapshot(in SnapshotInput, generatedAt time.Time) models.ReportSnapshot {
	org := in.Organization
	snap := models.ReportSnapshot{
		Organization: models.SnapshotOrganization{
			Name:             org.Name,
			Sector:           org.Sector,
			EmployeeCount:    org.EmployeeCount,
			ExposureLevel:    string(org.ExposureLevel),
			AuditPeriodStart: org.AuditPeriodStart,
			AuditPeriodEnd:   org.AuditPeriodEnd,
		},
		Assets: models.SnapshotAssets{ByType: map[string]int{}},
		Compliance: models.SnapshotCompliance{
			Score:         in.Compliance.Score,
			Coverage:      in.Compliance.Coverage,
			Total:         in.Compliance.Total,
			Compliant:     in.Compliance.Compliant,
			Partial:       in.Compliance.Partial,
			NonCompliant:  in.Compliance.NonCompliant,
			NotApplicable: in.Compliance.NotApplicable,
		},
		GeneratedAt: generatedAt,
	}
	if scope := strings.TrimSpace(org.ScopeDescription); scope != "" {
		snap.Organization.ScopeDescription = &scope
	}

	for _, a := range in.Assets {
		if !a.IsActive {
			continue
		}
		snap.Assets.Total++
		snap.Assets.ByType[string(a.Type)]++
		switch scoring.AssetCriticality(a.Confidentiality, a.Integrity, a.Availability).Level {
		case scoring.CriticalityCritical:
			snap.Assets.Critical++
		case scoring.CriticalityHigh:
			snap.Assets.High++
		case scoring.CriticalityMedium:
			snap.Assets.Medium++
		case scoring.CriticalityLow:
			snap.Assets.Low++
		}
	}

	for _, av := range in.Risks {
		snap.Risks.Total++
		switch scoring.AssessRisk(av.Likelihood, av.Impact).Level {
		case scoring.RiskCritical:
			snap.Risks.Critical++
		case scoring.RiskHigh:
			snap.Risks.High++
		case scoring.RiskMedium:
			snap.Risks.Medium++
		case scoring.RiskLow:
			snap.Risks.Low++
		case scoring.RiskNegligible:
			snap.Risks.Negligible++
		}
	}

	fs := findings.CountFindings(in.Findings)
	snap.Findings = models.SnapshotFindings{
		Total:         fs.Total,
		Critical:      fs.Critical,
		High:          fs.High,
		Medium:        fs.Medium,
		Low:           fs.Low,
		Informational: fs.Informational,
		Open:          fs.Open,
		Resolved:      fs.Resolved,
	}
	return snap
}

// gather читает все источники снимка параллельно. Любой сбой: ошибка, без частичных данных.
func (s *Service) gather(ctx context.Context, orgID uint) (SnapshotInput, error) {
	var in SnapshotInput

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		org, err := s.store.Organizations().Get(gctx, orgID)
		if err != nil {
			return fmt.Errorf("organization: %w", err)
		}
		in.Organization = *org
		return nil
	})
	g.Go(func() error {
		var err error
		in.Assets, err = s.store.Assets().List(gctx, orgID)
		if err != nil {
			return fmt.Errorf("assets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		in.Risks, err = s.store.Risks().List(gctx, repository.RiskFilter{OrganizationID: orgID})
		if err != nil {
			return fmt.Errorf("risks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		stats, err := s.compliance.Stats(gctx, orgID)
		if err != nil {
			return fmt.Errorf("compliance: %w", err)
		}
		in.Compliance = *stats
		return nil
	})
	g.Go(func() error {
		var err error
		in.Findings, err = s.store.Findings().List(gctx, repository.FindingFilter{OrganizationID: orgID})
		if err != nil {
			return fmt.Errorf("findings: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return SnapshotInput{}, err
	}
	return in, nil
}

// Generate собирает снимок и сохраняет новую версию отчёта.
// Номер версии выдаётся внутри транзакции вместе со вставкой.
func (s *Service) Generate(ctx context.Context, orgID, userID uint, cfg Narrative) (*models.AuditReport, error) {
	cfg = cfg.normalize()
	if err := apperr.Validate(cfg); err != nil {
		return nil, err
	}

	in, err := s.gather(ctx, orgID)
	if err != nil {
		s.log.Error("report snapshot gather failed", zap.Uint("organization_id", orgID), zap.Error(err))
		return nil, apperr.Dependency("report snapshot", err)
	}

	now := s.now()
	report := models.AuditReport{
		OrganizationID:   orgID,
		Status:           models.ReportStatusFinal,
		Narrative:        cfg.model(),
		ScopeDescription: in.Organization.ScopeDescription,
		Snapshot:         BuildSnapshot(in, now),
		GeneratedBy:      userID,
		GeneratedAt:      now,
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		version, err := tx.Reports().NextVersion(ctx, orgID)
		if err != nil {
			return err
		}
		report.Version = version
		if err := tx.Reports().Create(ctx, &report); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "report", report.ID, "generate",
			fmt.Sprintf("Сформирован отчёт v%d: %s", report.Version, report.Narrative.Title))
	})
	if err != nil {
		return nil, apperr.FromStore(err, "отчёт")
	}

	metrics.ReportGenerated()
	s.log.Info("report generated",
		zap.Uint("organization_id", orgID),
		zap.Uint("report_id", report.ID),
		zap.Int("version", report.Version),
		zap.Int("compliance_score", report.Snapshot.Compliance.Score),
	)
	return &report, nil
}

// UpdateNarrative накладывает правку на сохранённый текст и проверяет результат целиком.
// Снимок не трогается.
func (s *Service) UpdateNarrative(ctx context.Context, orgID, userID, id uint, u NarrativeUpdate) (*models.AuditReport, error) {
	var report *models.AuditReport
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		current, err := tx.Reports().Get(ctx, orgID, id)
		if err != nil {
			return err
		}
		n := u.apply(narrativeOf(current.Narrative)).normalize()
		if err := apperr.Validate(n); err != nil {
			return err
		}
		if err := tx.Reports().UpdateNarrative(ctx, orgID, id, n.model()); err != nil {
			return err
		}
		report, err = tx.Reports().Get(ctx, orgID, id)
		if err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "report", id, "update",
			fmt.Sprintf("Изменён текст отчёта v%d", report.Version))
	})
	if err != nil {
		return nil, apperr.FromStore(err, "отчёт")
	}

	s.log.Info("report narrative updated", zap.Uint("organization_id", orgID), zap.Uint("report_id", id))
	return report, nil
}

func (s *Service) Get(ctx context.Context, orgID, id uint) (*models.AuditReport, error) {
	report, err := s.store.Reports().Get(ctx, orgID, id)
	if err != nil {
		return nil, apperr.FromStore(err, "отчёт")
	}
	return report, nil
}

func (s *Service) List(ctx context.Context, orgID uint) ([]models.AuditReport, error) {
	list, err := s.store.Reports().List(ctx, orgID)
	if err != nil {
		return nil, apperr.FromStore(err, "отчёты")
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, orgID, userID, id uint) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Reports().Delete(ctx, orgID, id); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "report", id, "delete", "Удалён отчёт")
	})
	if err != nil {
		return apperr.FromStore(err, "отчёт")
	}

	s.log.Info("report deleted", zap.Uint("organization_id", orgID), zap.Uint("report_id", id))
	return nil
}
