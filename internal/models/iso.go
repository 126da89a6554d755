package models

import "time"

// IsoDomain: раздел Annex A (A.5 Organizational, A.6 People, ...).
type IsoDomain struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"size:16;uniqueIndex;not null" json:"code"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	SortOrder   int    `json:"sort_order"`

	Controls []IsoControl `gorm:"foreignKey:DomainID" json:"controls,omitempty"`
}

// IsoControl: отдельный контроль Annex A (A.5.1 ...).
type IsoControl struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	DomainID    uint   `gorm:"index;not null" json:"domain_id"`
	Code        string `gorm:"size:16;uniqueIndex;not null" json:"code"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Guidance    string `gorm:"type:text" json:"guidance"`
	IsMandatory bool   `gorm:"not null;default:true" json:"is_mandatory"`
	SortOrder   int    `json:"sort_order"`
}

type ControlStatus string

const (
	ControlCompliant     ControlStatus = "compliant"
	ControlPartial       ControlStatus = "partial"
	ControlNonCompliant  ControlStatus = "non_compliant"
	ControlNotApplicable ControlStatus = "not_applicable"
)

// ControlAssessment: оценка контроля в рамках организации.
// Одна запись на пару (organization_id, control_id).
type ControlAssessment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrganizationID uint          `gorm:"not null;uniqueIndex:idx_org_control" json:"organization_id"`
	ControlID      uint          `gorm:"not null;uniqueIndex:idx_org_control" json:"control_id"`
	Status         ControlStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	Notes                 string     `gorm:"type:text" json:"notes"`
	ImplementationDetails string     `gorm:"type:text" json:"implementation_details"`
	ResponsiblePerson     string     `gorm:"size:255" json:"responsible_person"`
	TargetDate            *time.Time `json:"target_date"`

	ReviewedBy uint       `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	CreatedBy  uint       `json:"created_by"`

	Control IsoControl `json:"control"`
}
