// Package compliance: оценка контролей Annex A и расчёт процента соответствия.
package compliance

import (
	"context"
	"fmt"
	"time"

	"iso-audit/internal/apperr"
	"iso-audit/internal/metrics"
	"iso-audit/internal/models"
	"iso-audit/internal/repository"
	"iso-audit/internal/scoring"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AssessControlInput struct {
	OrganizationID uint `json:"-"`
	UserID         uint `json:"-"`
	ControlID      uint `json:"control_id" validate:"required"`

	Status                models.ControlStatus `json:"status" validate:"required,oneof=compliant partial non_compliant not_applicable"`
	Notes                 string               `json:"notes"`
	ImplementationDetails string               `json:"implementation_details"`
	ResponsiblePerson     string               `json:"responsible_person" validate:"max=255"`
	TargetDate            *time.Time           `json:"target_date"`
}

type Service struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store repository.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// AssessControl: вставка или замена оценки по (organization_id, control_id).
func (s *Service) AssessControl(ctx context.Context, in AssessControlInput) (*models.ControlAssessment, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	now := s.now()
	var a models.ControlAssessment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		control, err := tx.Controls().GetControl(ctx, in.ControlID)
		if err != nil {
			return apperr.FromStore(err, "контроль")
		}

		a = models.ControlAssessment{
			OrganizationID:        in.OrganizationID,
			ControlID:             control.ID,
			Status:                in.Status,
			Notes:                 in.Notes,
			ImplementationDetails: in.ImplementationDetails,
			ResponsiblePerson:     in.ResponsiblePerson,
			TargetDate:            in.TargetDate,
			ReviewedBy:            in.UserID,
			ReviewedAt:            &now,
			CreatedBy:             in.UserID,
		}
		if err := tx.Controls().UpsertAssessment(ctx, &a); err != nil {
			return err
		}
		a.Control = *control

		return repository.LogActivity(ctx, tx, in.OrganizationID, in.UserID, "control_assessment", a.ID, "assess",
			fmt.Sprintf("%s: %s", control.Code, a.Status))
	})
	if err != nil {
		return nil, apperr.FromStore(err, "оценка контроля")
	}

	s.log.Info("control assessed",
		zap.Uint("organization_id", in.OrganizationID),
		zap.Uint("control_id", in.ControlID),
		zap.String("status", string(in.Status)),
	)
	return &a, nil
}

// ====== агрегаты ======

type DomainStats struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	scoring.Counts
	Score    int `json:"score"`
	Coverage int `json:"coverage"`
}

type Stats struct {
	scoring.Counts
	Score      int              `json:"score"`
	Coverage   int              `json:"coverage"`
	Unassessed int              `json:"unassessed"`
	Maturity   scoring.Maturity `json:"maturity"`
	Domains    []DomainStats    `json:"domains"`
}

func tally(c *scoring.Counts, status models.ControlStatus) {
	c.Assessed++
	switch status {
	case models.ControlCompliant:
		c.Compliant++
	case models.ControlPartial:
		c.Partial++
	case models.ControlNonCompliant:
		c.NonCompliant++
	case models.ControlNotApplicable:
		c.NotApplicable++
	}
}

// BuildStats считает счётчики по доменам и по организации в целом.
// Неоценённые контроли входят в total и в знаменатель процента.
// Оценки контролей, отсутствующих в справочнике, игнорируются.
func BuildStats(domains []models.IsoDomain, controls []models.IsoControl, assessments []models.ControlAssessment) Stats {
	domainOf := make(map[uint]uint, len(controls))
	perDomain := make(map[uint]*scoring.Counts, len(domains))
	for _, d := range domains {
		perDomain[d.ID] = &scoring.Counts{}
	}

	var overall scoring.Counts
	for _, c := range controls {
		domainOf[c.ID] = c.DomainID
		overall.Total++
		if dc, ok := perDomain[c.DomainID]; ok {
			dc.Total++
		}
	}

	seen := make(map[uint]bool, len(assessments))
	for _, a := range assessments {
		domainID, ok := domainOf[a.ControlID]
		if !ok || seen[a.ControlID] {
			continue
		}
		seen[a.ControlID] = true
		tally(&overall, a.Status)
		if dc, ok := perDomain[domainID]; ok {
			tally(dc, a.Status)
		}
	}

	stats := Stats{
		Counts:     overall,
		Score:      overall.Score(),
		Coverage:   overall.Coverage(),
		Unassessed: overall.Unassessed(),
		Domains:    make([]DomainStats, 0, len(domains)),
	}
	stats.Maturity = scoring.MaturityFor(stats.Score)

	for _, d := range domains {
		c := *perDomain[d.ID]
		stats.Domains = append(stats.Domains, DomainStats{
			ID:       d.ID,
			Code:     d.Code,
			Name:     d.Name,
			Counts:   c,
			Score:    c.Score(),
			Coverage: c.Coverage(),
		})
	}
	return stats
}

// Stats: три независимых чтения параллельно; сбой любого, ошибка всего вызова.
func (s *Service) Stats(ctx context.Context, orgID uint) (*Stats, error) {
	var (
		domains     []models.IsoDomain
		controls    []models.IsoControl
		assessments []models.ControlAssessment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		domains, err = s.store.Controls().ListDomains(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		controls, err = s.store.Controls().ListControls(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		assessments, err = s.store.Controls().ListAssessments(gctx, repository.AssessmentFilter{OrganizationID: orgID})
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("compliance stats failed", zap.Uint("organization_id", orgID), zap.Error(err))
		return nil, apperr.Dependency("compliance stats", err)
	}

	stats := BuildStats(domains, controls, assessments)
	metrics.SetComplianceScore(orgID, stats.Score)
	return &stats, nil
}

// ====== чек-лист ======

type ChecklistItem struct {
	models.IsoControl
	Assessment *models.ControlAssessment `json:"assessment"`
}

type ChecklistDomain struct {
	ID       uint            `json:"id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Controls []ChecklistItem `json:"controls"`
}

// Checklist: домены → контроли с оценкой организации (не более одной на контроль).
func (s *Service) Checklist(ctx context.Context, orgID uint) ([]ChecklistDomain, error) {
	var (
		domains     []models.IsoDomain
		assessments []models.ControlAssessment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		domains, err = s.store.Controls().ListDomains(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		assessments, err = s.store.Controls().ListAssessments(gctx, repository.AssessmentFilter{OrganizationID: orgID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Dependency("checklist", err)
	}

	byControl := make(map[uint]models.ControlAssessment, len(assessments))
	for _, a := range assessments {
		a.Control = models.IsoControl{}
		byControl[a.ControlID] = a
	}

	out := make([]ChecklistDomain, 0, len(domains))
	for _, d := range domains {
		cd := ChecklistDomain{ID: d.ID, Code: d.Code, Name: d.Name, Controls: make([]ChecklistItem, 0, len(d.Controls))}
		for _, c := range d.Controls {
			item := ChecklistItem{IsoControl: c}
			if a, ok := byControl[c.ID]; ok {
				item.Assessment = &a
			}
			cd.Controls = append(cd.Controls, item)
		}
		out = append(out, cd)
	}
	return out, nil
}
