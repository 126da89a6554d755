// Package assets: реестр информационных активов организации.
// criticality_score / criticality пересчитываются при каждой записи.
package assets

import (
	"context"
	"fmt"

	"iso-audit/internal/apperr"
	"iso-audit/internal/models"
	"iso-audit/internal/repository"

	"go.uber.org/zap"
)

type Input struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Type        models.AssetType `json:"type" validate:"required,oneof=hardware software data service personnel facility"`
	Description string           `json:"description"`
	Owner       string           `json:"owner" validate:"max=255"`
	Location    string           `json:"location" validate:"max=255"`
	IPAddress   string           `json:"ip_address" validate:"max=64"`
	Vendor      string           `json:"vendor" validate:"max=255"`
	Version     string           `json:"version" validate:"max=100"`
	Notes       string           `json:"notes"`

	Confidentiality int `json:"confidentiality" validate:"min=1,max=5"`
	Integrity       int `json:"integrity" validate:"min=1,max=5"`
	Availability    int `json:"availability" validate:"min=1,max=5"`
}

func (in Input) apply(a *models.Asset) {
	a.Name = in.Name
	a.Type = in.Type
	a.Description = in.Description
	a.Owner = in.Owner
	a.Location = in.Location
	a.IPAddress = in.IPAddress
	a.Vendor = in.Vendor
	a.Version = in.Version
	a.Notes = in.Notes
	a.Confidentiality = in.Confidentiality
	a.Integrity = in.Integrity
	a.Availability = in.Availability
	a.ApplyCriticality()
}

type Service struct {
	store repository.Store
	log   *zap.Logger
}

func NewService(store repository.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) Create(ctx context.Context, orgID, userID uint, in Input) (*models.Asset, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	asset := models.Asset{
		OrganizationID: orgID,
		IsActive:       true,
		CreatedBy:      userID,
	}
	in.apply(&asset)

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Assets().Create(ctx, &asset); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "asset", asset.ID, "create",
			fmt.Sprintf("Создан актив: %s (%s)", asset.Name, asset.Criticality))
	})
	if err != nil {
		return nil, apperr.FromStore(err, "актив")
	}

	s.log.Info("asset created",
		zap.Uint("organization_id", orgID),
		zap.Uint("asset_id", asset.ID),
		zap.String("criticality", string(asset.Criticality)),
	)
	return &asset, nil
}

// Update заменяет редактируемые поля и пересчитывает критичность.
func (s *Service) Update(ctx context.Context, orgID, userID, id uint, in Input) (*models.Asset, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	var asset *models.Asset
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		asset, err = tx.Assets().Get(ctx, orgID, id)
		if err != nil {
			return err
		}
		if !asset.IsActive {
			return repository.ErrNotFound
		}
		in.apply(asset)
		if err := tx.Assets().Update(ctx, asset); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "asset", asset.ID, "update",
			fmt.Sprintf("Изменён актив: %s (%s)", asset.Name, asset.Criticality))
	})
	if err != nil {
		return nil, apperr.FromStore(err, "актив")
	}

	s.log.Info("asset updated", zap.Uint("organization_id", orgID), zap.Uint("asset_id", id))
	return asset, nil
}

func (s *Service) Get(ctx context.Context, orgID, id uint) (*models.Asset, error) {
	asset, err := s.store.Assets().Get(ctx, orgID, id)
	if err != nil {
		return nil, apperr.FromStore(err, "актив")
	}
	return asset, nil
}

func (s *Service) List(ctx context.Context, orgID uint) ([]models.Asset, error) {
	list, err := s.store.Assets().List(ctx, orgID)
	if err != nil {
		return nil, apperr.FromStore(err, "активы")
	}
	return list, nil
}

// Deactivate: мягкое удаление: актив пропадает из списков и агрегатов,
// оценки рисков по нему остаются.
func (s *Service) Deactivate(ctx context.Context, orgID, userID, id uint) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Assets().Deactivate(ctx, orgID, id); err != nil {
			return err
		}
		return repository.LogActivity(ctx, tx, orgID, userID, "asset", id, "delete", "Актив выведен из эксплуатации")
	})
	if err != nil {
		return apperr.FromStore(err, "актив")
	}

	s.log.Info("asset deactivated", zap.Uint("organization_id", orgID), zap.Uint("asset_id", id))
	return nil
}

// VerifyCriticality: совпадает ли сохранённая критичность с формулой.
func VerifyCriticality(a models.Asset) bool {
	return a.CriticalityConsistent()
}
