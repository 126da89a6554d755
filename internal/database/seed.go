package database

import (
	"context"
	"fmt"

	"iso-audit/internal/catalog"
	"iso-audit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedCatalog загружает справочники Annex A и OWASP. Повторный запуск обновляет записи по коду.
func SeedCatalog(ctx context.Context, db *gorm.DB) (domains, controls, vulns int, err error) {
	annex, err := catalog.AnnexA()
	if err != nil {
		return 0, 0, 0, err
	}
	owasp, err := catalog.OWASPTop10()
	if err != nil {
		return 0, 0, 0, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for di, d := range annex {
			domain := models.IsoDomain{
				Code:        d.Code,
				Name:        d.Name,
				Description: d.Description,
				SortOrder:   di + 1,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "description", "sort_order"}),
			}).Create(&domain).Error; err != nil {
				return fmt.Errorf("seed domain %s: %w", d.Code, err)
			}
			// при конфликте RETURNING может не вернуть id: перечитываем
			if err := tx.Where("code = ?", d.Code).First(&domain).Error; err != nil {
				return fmt.Errorf("reload domain %s: %w", d.Code, err)
			}
			domains++

			for ci, c := range d.Controls {
				control := models.IsoControl{
					DomainID:    domain.ID,
					Code:        c.Code,
					Name:        c.Name,
					Description: c.Description,
					Guidance:    c.Guidance,
					IsMandatory: true,
					SortOrder:   ci + 1,
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "code"}},
					DoUpdates: clause.AssignmentColumns([]string{"domain_id", "name", "description", "guidance", "sort_order"}),
				}).Create(&control).Error; err != nil {
					return fmt.Errorf("seed control %s: %w", c.Code, err)
				}
				controls++
			}
		}

		for _, v := range owasp {
			vuln := models.Vulnerability{
				Code:                v.Code,
				Name:                v.Name,
				Category:            v.Category,
				Description:         v.Description,
				BaseLikelihood:      v.BaseLikelihood,
				BaseImpact:          v.BaseImpact,
				RemediationGuidance: v.RemediationGuidance,
				CWEIDs:              v.CWEIDs,
				ReferenceLinks:      v.ReferenceLinks,
				IsActive:            true,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "category", "description", "base_likelihood",
					"base_impact", "remediation_guidance", "cwe_ids", "reference_links",
				}),
			}).Create(&vuln).Error; err != nil {
				return fmt.Errorf("seed vulnerability %s: %w", v.Code, err)
			}
			vulns++
		}
		return nil
	})
	if err != nil {
		return 0, 0, 0, err
	}
	return domains, controls, vulns, nil
}
