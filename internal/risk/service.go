// Package risk: оценка рисков пар актив/уязвимость.
package risk

import (
	"context"
	"fmt"
	"time"

	"iso-audit/internal/apperr"
	"iso-audit/internal/models"
	"iso-audit/internal/repository"
	"iso-audit/internal/scoring"

	"go.uber.org/zap"
)

type AssessInput struct {
	OrganizationID  uint `json:"-"`
	UserID          uint `json:"-"`
	AssetID         uint `json:"asset_id" validate:"required"`
	VulnerabilityID uint `json:"vulnerability_id" validate:"required"`

	Likelihood int `json:"likelihood" validate:"min=1,max=5"`
	Impact     int `json:"impact" validate:"min=1,max=5"`

	TreatmentOption models.TreatmentOption `json:"treatment_option" validate:"omitempty,oneof=mitigate accept transfer avoid"`
	TreatmentNotes  string                 `json:"treatment_notes"`
	IsAccepted      bool                   `json:"is_accepted"`
}

type Service struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store repository.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Assess: вставка или замена оценки по паре (asset_id, vulnerability_id).
// Повторная оценка той же пары перезаписывает likelihood/impact и пересчитывает уровень.
func (s *Service) Assess(ctx context.Context, in AssessInput) (*models.AssetVulnerability, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	var av models.AssetVulnerability
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		asset, err := tx.Assets().Get(ctx, in.OrganizationID, in.AssetID)
		if err != nil {
			return apperr.FromStore(err, "актив")
		}
		if !asset.IsActive {
			return apperr.NotFound("актив")
		}

		vuln, err := tx.Vulnerabilities().Get(ctx, in.VulnerabilityID)
		if err != nil {
			return apperr.FromStore(err, "уязвимость")
		}

		av = models.AssetVulnerability{
			OrganizationID:  in.OrganizationID,
			AssetID:         asset.ID,
			VulnerabilityID: vuln.ID,
			Likelihood:      in.Likelihood,
			Impact:          in.Impact,
			TreatmentOption: in.TreatmentOption,
			TreatmentNotes:  in.TreatmentNotes,
			IsAccepted:      in.IsAccepted,
			AssessedBy:      in.UserID,
			AssessedAt:      s.now(),
		}
		av.ApplyRisk()

		if err := tx.Risks().Upsert(ctx, &av); err != nil {
			return err
		}
		av.Asset, av.Vulnerability = *asset, *vuln

		return repository.LogActivity(ctx, tx, in.OrganizationID, in.UserID, "risk", av.ID, "assess",
			fmt.Sprintf("%s на %s: L=%d I=%d, риск %d (%s)",
				vuln.Code, asset.Name, av.Likelihood, av.Impact, av.RiskScore, av.RiskLevel))
	})
	if err != nil {
		return nil, apperr.FromStore(err, "оценка риска")
	}

	s.log.Info("risk assessed",
		zap.Uint("organization_id", in.OrganizationID),
		zap.Uint("asset_id", in.AssetID),
		zap.Uint("vulnerability_id", in.VulnerabilityID),
		zap.Int("risk_score", av.RiskScore),
		zap.String("risk_level", string(av.RiskLevel)),
	)
	return &av, nil
}

// Remove удаляет оценку. Уже созданные по ней находки остаются.
func (s *Service) Remove(ctx context.Context, orgID, userID, id uint) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Risks().Delete(ctx, orgID, id); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "risk", id, "delete", "Удалена оценка риска")
	})
	if err != nil {
		return apperr.FromStore(err, "оценка риска")
	}

	s.log.Info("risk removed", zap.Uint("organization_id", orgID), zap.Uint("risk_id", id))
	return nil
}

type Filter struct {
	AssetID uint
	Levels  []scoring.RiskLevel
}

func (s *Service) List(ctx context.Context, orgID uint, f Filter) ([]models.AssetVulnerability, error) {
	for _, l := range f.Levels {
		if !l.Valid() {
			return nil, apperr.Validation("level", "неизвестный уровень риска: "+string(l))
		}
	}

	list, err := s.store.Risks().List(ctx, repository.RiskFilter{
		OrganizationID: orgID,
		AssetID:        f.AssetID,
		Levels:         f.Levels,
	})
	if err != nil {
		return nil, apperr.FromStore(err, "оценки рисков")
	}
	return list, nil
}

func (s *Service) Catalog(ctx context.Context) ([]models.Vulnerability, error) {
	list, err := s.store.Vulnerabilities().List(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, "справочник уязвимостей")
	}
	return list, nil
}

// ====== матрица рисков 5x5 ======

type MatrixCell struct {
	Likelihood int               `json:"likelihood"`
	Impact     int               `json:"impact"`
	Score      int               `json:"score"`
	Level      scoring.RiskLevel `json:"level"`
	Count      int               `json:"count"`
}

// Matrix: Cells[l-1][i-1], пары с likelihood=l, impact=i.
type Matrix struct {
	Cells   [scoring.MaxRating][scoring.MaxRating]MatrixCell `json:"cells"`
	Total   int                                              `json:"total"`
	ByLevel map[scoring.RiskLevel]int                        `json:"by_level"`
}

// BuildMatrix раскладывает оценки по сетке likelihood × impact.
func BuildMatrix(risks []models.AssetVulnerability) Matrix {
	var m Matrix
	m.ByLevel = make(map[scoring.RiskLevel]int, len(scoring.RiskLevels))
	for _, l := range scoring.RiskLevels {
		m.ByLevel[l] = 0
	}

	for l := scoring.MinRating; l <= scoring.MaxRating; l++ {
		for i := scoring.MinRating; i <= scoring.MaxRating; i++ {
			r := scoring.AssessRisk(l, i)
			m.Cells[l-1][i-1] = MatrixCell{Likelihood: l, Impact: i, Score: r.Score, Level: r.Level}
		}
	}

	for _, av := range risks {
		if !scoring.ValidRating(av.Likelihood) || !scoring.ValidRating(av.Impact) {
			continue
		}
		cell := &m.Cells[av.Likelihood-1][av.Impact-1]
		cell.Count++
		m.Total++
		m.ByLevel[cell.Level]++
	}
	return m
}

func (s *Service) Matrix(ctx context.Context, orgID uint) (Matrix, error) {
	risks, err := s.store.Risks().List(ctx, repository.RiskFilter{OrganizationID: orgID})
	if err != nil {
		return Matrix{}, apperr.Dependency("risk matrix", err)
	}
	return BuildMatrix(risks), nil
}
