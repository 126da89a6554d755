// Package handlers: JSON API поверх сервисов аудита.
package handlers

import (
	"iso-audit/internal/assets"
	"iso-audit/internal/compliance"
	"iso-audit/internal/findings"
	"iso-audit/internal/organization"
	"iso-audit/internal/reports"
	"iso-audit/internal/repository"
	"iso-audit/internal/risk"

	"go.uber.org/zap"
)

type Handler struct {
	store repository.Store
	log   *zap.Logger

	orgs       *organization.Service
	assets     *assets.Service
	risks      *risk.Service
	compliance *compliance.Service
	findings   *findings.Service
	reports    *reports.Service
}

func New(store repository.Store, log *zap.Logger) *Handler {
	comp := compliance.NewService(store, log)
	return &Handler{
		store:      store,
		log:        log,
		orgs:       organization.NewService(store, log),
		assets:     assets.NewService(store, log),
		risks:      risk.NewService(store, log),
		compliance: comp,
		findings:   findings.NewService(store, log),
		reports:    reports.NewService(store, comp, log),
	}
}
