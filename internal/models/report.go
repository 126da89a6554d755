package models

import (
	"time"

	"gorm.io/gorm"
)

type FinalOpinion string

const (
	OpinionCertified    FinalOpinion = "certified"
	OpinionConditional  FinalOpinion = "conditional"
	OpinionNotCertified FinalOpinion = "not_certified"
)

const ReportStatusFinal = "final"

// ReportNarrative: редактируемая часть отчёта.
type ReportNarrative struct {
	Title            string       `gorm:"size:500;not null" json:"title"`
	AuditorName      string       `gorm:"size:255" json:"auditor_name"`
	AuditDate        *time.Time   `json:"audit_date"`
	NextAuditDate    *time.Time   `json:"next_audit_date"`
	ExecutiveSummary string       `gorm:"type:text" json:"executive_summary"`
	Methodology      string       `gorm:"type:text" json:"methodology"`
	FinalOpinion     FinalOpinion `gorm:"type:varchar(20)" json:"final_opinion"`
	OpinionNotes     string       `gorm:"type:text" json:"opinion_notes"`
}

// AuditReport: версия отчёта аудита.
// Snapshot и GeneratedAt пишутся только при создании (<-:create), UPDATE их не трогает.
type AuditReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// мягкое удаление: номер версии удалённого отчёта повторно не выдаётся
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrganizationID uint   `gorm:"not null;uniqueIndex:idx_report_version" json:"organization_id"`
	Version        int    `gorm:"not null;uniqueIndex:idx_report_version;<-:create" json:"version"`
	Status         string `gorm:"size:20;not null;default:final" json:"status"`

	Narrative        ReportNarrative `gorm:"embedded" json:"narrative"`
	ScopeDescription string          `gorm:"type:text;<-:create" json:"scope_description"`

	Snapshot    ReportSnapshot `gorm:"serializer:json;type:jsonb;not null;<-:create" json:"snapshot"`
	GeneratedBy uint           `gorm:"<-:create" json:"generated_by"`
	GeneratedAt time.Time      `gorm:"not null;<-:create" json:"generated_at"`
}

// ReportSnapshot: замороженные на момент генерации агрегаты.
// Имена JSON-полей, контракт для внешних потребителей (экспорт в PDF).
type ReportSnapshot struct {
	Organization SnapshotOrganization `json:"organization"`
	Assets       SnapshotAssets       `json:"assets"`
	Risks        SnapshotRisks        `json:"risks"`
	Compliance   SnapshotCompliance   `json:"compliance"`
	Findings     SnapshotFindings     `json:"findings"`
	GeneratedAt  time.Time            `json:"generatedAt"`
}

type SnapshotOrganization struct {
	Name             string     `json:"name"`
	Sector           string     `json:"sector"`
	EmployeeCount    *int       `json:"employee_count"`
	ExposureLevel    string     `json:"exposure_level"`
	AuditPeriodStart *time.Time `json:"audit_period_start"`
	AuditPeriodEnd   *time.Time `json:"audit_period_end"`
	ScopeDescription *string    `json:"scope_description"`
}

type SnapshotAssets struct {
	Total    int            `json:"total"`
	Critical int            `json:"critical"`
	High     int            `json:"high"`
	Medium   int            `json:"medium"`
	Low      int            `json:"low"`
	ByType   map[string]int `json:"byType"`
}

type SnapshotRisks struct {
	Total      int `json:"total"`
	Critical   int `json:"critical"`
	High       int `json:"high"`
	Medium     int `json:"medium"`
	Low        int `json:"low"`
	Negligible int `json:"negligible"`
}

type SnapshotCompliance struct {
	Score         int `json:"score"`
	Coverage      int `json:"coverage"`
	Total         int `json:"total"`
	Compliant     int `json:"compliant"`
	Partial       int `json:"partial"`
	NonCompliant  int `json:"nonCompliant"`
	NotApplicable int `json:"notApplicable"`
}

type SnapshotFindings struct {
	Total         int `json:"total"`
	Critical      int `json:"critical"`
	High          int `json:"high"`
	Medium        int `json:"medium"`
	Low           int `json:"low"`
	Informational int `json:"informational"`
	Open          int `json:"open"`
	Resolved      int `json:"resolved"`
}

// Clone: глубокая копия (ByType это map).
func (s ReportSnapshot) Clone() ReportSnapshot {
	out := s
	if s.Assets.ByType != nil {
		out.Assets.ByType = make(map[string]int, len(s.Assets.ByType))
		for k, v := range s.Assets.ByType {
			out.Assets.ByType[k] = v
		}
	}
	return out
}
