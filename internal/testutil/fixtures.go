package testutil

import (
	"context"
	"testing"

	"iso-audit/internal/catalog"
	"iso-audit/internal/models"

	"github.com/stretchr/testify/require"
)

// AddDomain кладёт раздел Annex A напрямую в справочник.
func (s *MemStore) AddDomain(code, name string) models.IsoDomain {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	d := s.sh.data
	dom := models.IsoDomain{ID: d.id(), Code: code, Name: name, SortOrder: len(d.domains) + 1}
	d.domains[dom.ID] = dom
	return dom
}

func (s *MemStore) AddControl(domainID uint, code, name string) models.IsoControl {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	d := s.sh.data
	sortOrder := 1
	for _, c := range d.controls {
		if c.DomainID == domainID {
			sortOrder++
		}
	}
	c := models.IsoControl{ID: d.id(), DomainID: domainID, Code: code, Name: name, IsMandatory: true, SortOrder: sortOrder}
	d.controls[c.ID] = c
	return c
}

func (s *MemStore) AddVulnerability(v models.Vulnerability) models.Vulnerability {
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	d := s.sh.data
	v.ID = d.id()
	if v.BaseLikelihood == 0 {
		v.BaseLikelihood = 3
	}
	if v.BaseImpact == 0 {
		v.BaseImpact = 3
	}
	v.IsActive = true
	d.vulns[v.ID] = v
	return v
}

// SeedCatalog загружает встроенный справочник Annex A (93 контроля) и OWASP Top 10.
func (s *MemStore) SeedCatalog(t testing.TB) {
	t.Helper()

	annex, err := catalog.AnnexA()
	require.NoError(t, err)
	for _, d := range annex {
		dom := s.AddDomain(d.Code, d.Name)
		for _, c := range d.Controls {
			s.AddControl(dom.ID, c.Code, c.Name)
		}
	}

	owasp, err := catalog.OWASPTop10()
	require.NoError(t, err)
	for _, v := range owasp {
		s.AddVulnerability(models.Vulnerability{
			Code:                v.Code,
			Name:                v.Name,
			Category:            v.Category,
			BaseLikelihood:      v.BaseLikelihood,
			BaseImpact:          v.BaseImpact,
			RemediationGuidance: v.RemediationGuidance,
			CWEIDs:              v.CWEIDs,
			ReferenceLinks:      v.ReferenceLinks,
		})
	}
}

// Organization создаёт организацию и её администратора.
func (s *MemStore) Organization(t testing.TB, name string) (models.Organization, models.User) {
	t.Helper()
	ctx := context.Background()

	user := models.User{Username: name + "-admin", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, s.Users().Create(ctx, &user))

	org := models.Organization{Name: name, Sector: "financial", ExposureLevel: models.ExposureInternetFacing, CreatedBy: user.ID}
	require.NoError(t, s.Organizations().Create(ctx, &org))

	user.OrganizationID = &org.ID
	require.NoError(t, s.Users().Update(ctx, &user))
	return org, user
}

// Asset сохраняет актив с пересчитанной критичностью, минуя сервис.
func (s *MemStore) Asset(t testing.TB, orgID uint, name string, assetType models.AssetType, c, i, a int) models.Asset {
	t.Helper()
	asset := models.Asset{
		OrganizationID:  orgID,
		Name:            name,
		Type:            assetType,
		Confidentiality: c,
		Integrity:       i,
		Availability:    a,
		IsActive:        true,
	}
	asset.ApplyCriticality()
	require.NoError(t, s.Assets().Create(context.Background(), &asset))
	return asset
}

func IntPtr(v int) *int { return &v }
