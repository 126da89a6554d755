package models

import (
	"time"

	"iso-audit/internal/scoring"
)

// Vulnerability: справочник уязвимостей (OWASP Top 10 и т.п.), общий для всех организаций.
type Vulnerability struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Code                string   `gorm:"size:32;uniqueIndex;not null" json:"code"` // например: A01:2021
	Name                string   `gorm:"size:255;not null" json:"name"`
	Category            string   `gorm:"size:100" json:"category"`
	Description         string   `gorm:"type:text" json:"description"`
	BaseLikelihood      int      `gorm:"not null;default:3" json:"base_likelihood"`
	BaseImpact          int      `gorm:"not null;default:3" json:"base_impact"`
	RemediationGuidance string   `gorm:"type:text" json:"remediation_guidance"`
	CWEIDs              []string `gorm:"serializer:json;type:jsonb" json:"cwe_ids"`
	ReferenceLinks      []string `gorm:"serializer:json;type:jsonb" json:"reference_links"`
	IsActive            bool     `gorm:"not null;default:true" json:"is_active"`
}

type TreatmentOption string

const (
	TreatmentMitigate TreatmentOption = "mitigate"
	TreatmentAccept   TreatmentOption = "accept"
	TreatmentTransfer TreatmentOption = "transfer"
	TreatmentAvoid    TreatmentOption = "avoid"
)

// AssetVulnerability: оценка риска "уязвимость на конкретном активе".
// Одна запись на пару (asset_id, vulnerability_id).
type AssetVulnerability struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrganizationID  uint `gorm:"index;not null" json:"organization_id"`
	AssetID         uint `gorm:"not null;uniqueIndex:idx_asset_vulnerability" json:"asset_id"`
	VulnerabilityID uint `gorm:"not null;uniqueIndex:idx_asset_vulnerability" json:"vulnerability_id"`

	Likelihood int               `gorm:"not null" json:"likelihood"`
	Impact     int               `gorm:"not null" json:"impact"`
	RiskScore  int               `gorm:"not null" json:"risk_score"`
	RiskLevel  scoring.RiskLevel `gorm:"type:varchar(20);not null;index" json:"risk_level"`

	TreatmentOption TreatmentOption `gorm:"type:varchar(20)" json:"treatment_option"`
	TreatmentNotes  string          `gorm:"type:text" json:"treatment_notes"`
	IsAccepted      bool            `json:"is_accepted"`

	AssessedBy uint      `json:"assessed_by"`
	AssessedAt time.Time `json:"assessed_at"`

	Asset         Asset         `json:"asset"`
	Vulnerability Vulnerability `json:"vulnerability"`
}

// ApplyRisk пересчитывает risk_score / risk_level из likelihood и impact.
func (av *AssetVulnerability) ApplyRisk() {
	r := scoring.AssessRisk(av.Likelihood, av.Impact)
	av.RiskScore = r.Score
	av.RiskLevel = r.Level
}

func (av AssetVulnerability) RiskConsistent() bool {
	r := scoring.AssessRisk(av.Likelihood, av.Impact)
	return av.RiskScore == r.Score && av.RiskLevel == r.Level
}
