package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleAuditor UserRole = "auditor"
	RoleViewer  UserRole = "viewer"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string   `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role"`

	// nil: пользователь ещё не создал/не привязан к организации
	OrganizationID *uint `gorm:"index" json:"organization_id"`
}
