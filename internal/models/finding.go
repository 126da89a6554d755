package models

import "time"

type FindingSeverity string
type FindingStatus string
type FindingSource string

const (
	SeverityCritical      FindingSeverity = "critical"
	SeverityHigh          FindingSeverity = "high"
	SeverityMedium        FindingSeverity = "medium"
	SeverityLow           FindingSeverity = "low"
	SeverityInformational FindingSeverity = "informational"

	FindingOpen       FindingStatus = "open"
	FindingInProgress FindingStatus = "in_progress"
	FindingResolved   FindingStatus = "resolved"
	FindingAccepted   FindingStatus = "accepted"
	FindingClosed     FindingStatus = "closed"

	SourceRiskAssessment FindingSource = "risk_assessment"
	SourceChecklist      FindingSource = "checklist"
	SourceManual         FindingSource = "manual"
	SourceAIGenerated    FindingSource = "ai_generated"
)

// AuditFinding: выявленное несоответствие или риск.
// Для source = risk_assessment уникальна пара (organization_id, vulnerability_id),
// для source = checklist: (organization_id, related_control_id); см. database.Migrate.
type AuditFinding struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrganizationID uint `gorm:"index;not null" json:"organization_id"`

	Title       string          `gorm:"size:500;not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Severity    FindingSeverity `gorm:"type:varchar(20);not null;index" json:"severity"`
	Status      FindingStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Source      FindingSource   `gorm:"type:varchar(20);not null" json:"source"`

	AffectedAssetID  *uint `json:"affected_asset_id"`
	RelatedControlID *uint `json:"related_control_id"`
	VulnerabilityID  *uint `json:"vulnerability_id"`

	RiskLevel  string `gorm:"size:20" json:"risk_level"`
	RiskScore  *int   `json:"risk_score"`
	Likelihood *int   `json:"likelihood"`
	Impact     *int   `json:"impact"`

	Recommendation      string     `gorm:"type:text" json:"recommendation"`
	RemediationDeadline *time.Time `json:"remediation_deadline"`
	RemediationOwner    string     `gorm:"size:255" json:"remediation_owner"`
	RemediationNotes    string     `gorm:"type:text" json:"remediation_notes"`

	AIGenerated   bool   `json:"ai_generated"`
	AIExplanation string `gorm:"type:text" json:"ai_explanation"`

	CreatedBy  uint       `json:"created_by"`
	AssignedTo *uint      `json:"assigned_to"`
	ResolvedAt *time.Time `json:"resolved_at"`

	Asset         *Asset         `gorm:"foreignKey:AffectedAssetID" json:"asset,omitempty"`
	Control       *IsoControl    `gorm:"foreignKey:RelatedControlID" json:"control,omitempty"`
	Vulnerability *Vulnerability `gorm:"foreignKey:VulnerabilityID" json:"vulnerability,omitempty"`
}
