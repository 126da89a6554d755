package models

import "time"

type ExposureLevel string

const (
	ExposureInternetFacing ExposureLevel = "internet_facing"
	ExposureInternal       ExposureLevel = "internal"
	ExposureRestricted     ExposureLevel = "restricted"
	ExposureAirGapped      ExposureLevel = "air_gapped"
)

// Organization: проверяемая организация (тенант). Все данные аудита принадлежат ей.
type Organization struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name          string   `gorm:"size:255;not null" json:"name"`
	Description   string   `gorm:"type:text" json:"description"`
	Sector        string   `gorm:"size:50" json:"sector"` // financial, healthcare, government ...
	EmployeeCount *int     `json:"employee_count"`
	Website       string   `gorm:"size:255" json:"website"`
	Address       string   `gorm:"type:text" json:"address"`
	Country       string   `gorm:"size:100" json:"country"`
	ContactName   string   `gorm:"size:255" json:"contact_name"`
	ContactEmail  string   `gorm:"size:255" json:"contact_email"`
	ContactPhone  string   `gorm:"size:50" json:"contact_phone"`
	SystemTypes   []string `gorm:"serializer:json;type:jsonb" json:"system_types"`

	ExposureLevel ExposureLevel `gorm:"type:varchar(30)" json:"exposure_level"`
	RiskAppetite  string        `gorm:"size:20;default:medium" json:"risk_appetite"`

	ScopeDescription string     `gorm:"type:text" json:"scope_description"`
	AuditPeriodStart *time.Time `json:"audit_period_start"`
	AuditPeriodEnd   *time.Time `json:"audit_period_end"`

	CreatedBy uint `json:"created_by"`
}
