package models

import (
	"time"

	"iso-audit/internal/scoring"

	"github.com/shopspring/decimal"
)

type AssetType string

const (
	AssetHardware  AssetType = "hardware"
	AssetSoftware  AssetType = "software"
	AssetData      AssetType = "data"
	AssetService   AssetType = "service"
	AssetPersonnel AssetType = "personnel"
	AssetFacility  AssetType = "facility"
)

var AssetTypes = []AssetType{
	AssetHardware,
	AssetSoftware,
	AssetData,
	AssetService,
	AssetPersonnel,
	AssetFacility,
}

type Asset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrganizationID uint `gorm:"index;not null" json:"organization_id"`

	Name        string    `gorm:"size:255;not null" json:"name"`
	Type        AssetType `gorm:"type:varchar(20);not null" json:"type"`
	Description string    `gorm:"type:text" json:"description"`
	Owner       string    `gorm:"size:255" json:"owner"`
	Location    string    `gorm:"size:255" json:"location"`
	IPAddress   string    `gorm:"size:64" json:"ip_address"`
	Vendor      string    `gorm:"size:255" json:"vendor"`
	Version     string    `gorm:"size:100" json:"version"`
	Notes       string    `gorm:"type:text" json:"notes"`

	// оценки CIA, 1..5
	Confidentiality int `gorm:"not null" json:"confidentiality"`
	Integrity       int `gorm:"not null" json:"integrity"`
	Availability    int `gorm:"not null" json:"availability"`

	// кэш расчёта scoring.AssetCriticality, пересчитывается при каждой записи
	CriticalityScore decimal.Decimal          `gorm:"type:numeric(4,2)" json:"criticality_score"`
	Criticality      scoring.CriticalityLevel `gorm:"type:varchar(20)" json:"criticality"`

	IsActive  bool `gorm:"not null;default:true;index" json:"is_active"`
	CreatedBy uint `json:"created_by"`
}

// ApplyCriticality пересчитывает кэшированные поля из текущих оценок CIA.
func (a *Asset) ApplyCriticality() {
	c := scoring.AssetCriticality(a.Confidentiality, a.Integrity, a.Availability)
	a.CriticalityScore = c.Score
	a.Criticality = c.Level
}

// CriticalityConsistent: совпадает ли сохранённое значение с формулой.
func (a Asset) CriticalityConsistent() bool {
	c := scoring.AssetCriticality(a.Confidentiality, a.Integrity, a.Availability)
	return a.CriticalityScore.Equal(c.Score) && a.Criticality == c.Level
}
