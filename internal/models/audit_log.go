package models

import "time"

// AuditLog: журнал действий пользователей (кто, что и когда поменял).
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrganizationID uint `gorm:"index" json:"organization_id"`

	UserID uint `json:"user_id"`
	User   User `json:"-"`

	Entity   string `gorm:"size:50;not null" json:"entity"` // "asset", "risk", "control_assessment", "finding", "report"
	EntityID uint   `json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "update", "delete", "generate" и т.п.
	Details  string `gorm:"type:text" json:"details"`
}
