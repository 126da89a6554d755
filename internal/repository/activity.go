package repository

import (
	"context"

	"iso-audit/internal/models"
)

// LogActivity: helper для записи в журнал действий.
func LogActivity(ctx context.Context, s Store, orgID, userID uint, entity string, entityID uint, action, details string) error {
	return s.AuditLogs().Create(ctx, &models.AuditLog{
		OrganizationID: orgID,
		UserID:         userID,
		Entity:         entity,
		EntityID:       entityID,
		Action:         action,
		Details:        details,
	})
}
