package findings

import (
	"context"
	"errors"
	"testing"
	"time"

	"iso-audit/internal/apperr"
	"iso-audit/internal/models"
	"iso-audit/internal/repository"
	"iso-audit/internal/scoring"
	"iso-audit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc     *Service
	store   *testutil.MemStore
	org     models.Organization
	user    models.User
	asset   models.Asset
	vuln    models.Vulnerability
	control models.IsoControl
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := testutil.NewMemStore()
	org, user := store.Organization(t, "Acme")
	domain := store.AddDomain("A.8", "Technological controls")

	return fixture{
		svc:     NewService(store, zap.NewNop()),
		store:   store,
		org:     org,
		user:    user,
		asset:   store.Asset(t, org.ID, "Payments API", models.AssetService, 5, 5, 5),
		vuln:    store.AddVulnerability(models.Vulnerability{Code: "A03:2021", Name: "Injection", RemediationGuidance: "Use parameterized queries."}),
		control: store.AddControl(domain.ID, "A.8.8", "Management of technical vulnerabilities"),
	}
}

func (f fixture) addRisk(t *testing.T, vulnID uint, l, i int) {
	t.Helper()
	av := models.AssetVulnerability{
		OrganizationID:  f.org.ID,
		AssetID:         f.asset.ID,
		VulnerabilityID: vulnID,
		Likelihood:      l,
		Impact:          i,
		AssessedBy:      f.user.ID,
		AssessedAt:      time.Now(),
	}
	av.ApplyRisk()
	require.NoError(t, f.store.Risks().Upsert(context.Background(), &av))
}

func (f fixture) addAssessment(t *testing.T, controlID uint, status models.ControlStatus, notes string) {
	t.Helper()
	target := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Controls().UpsertAssessment(context.Background(), &models.ControlAssessment{
		OrganizationID:    f.org.ID,
		ControlID:         controlID,
		Status:            status,
		Notes:             notes,
		ResponsiblePerson: "CISO",
		TargetDate:        &target,
	}))
}

func TestAutoGenerateScenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addRisk(t, f.vuln.ID, 4, 5)
	f.addAssessment(t, f.control.ID, models.ControlNonCompliant, "No patch process")

	n, err := f.svc.AutoGenerate(ctx, f.org.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := f.svc.List(ctx, f.org.ID, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2)

	bySource := map[models.FindingSource]models.AuditFinding{}
	for _, fd := range list {
		bySource[fd.Source] = fd
	}

	risk := bySource[models.SourceRiskAssessment]
	assert.Equal(t, models.SeverityCritical, risk.Severity)
	assert.Equal(t, models.FindingOpen, risk.Status)
	assert.Equal(t, "Injection detected on Payments API", risk.Title)
	assert.Contains(t, risk.Description, "A03:2021")
	assert.Contains(t, risk.Description, "(service)")
	require.NotNil(t, risk.RiskScore)
	assert.Equal(t, 20, *risk.RiskScore)
	assert.Equal(t, 4, *risk.Likelihood)
	assert.Equal(t, 5, *risk.Impact)
	assert.Equal(t, string(scoring.RiskCritical), risk.RiskLevel)
	assert.Equal(t, "Use parameterized queries.", risk.Recommendation)
	assert.Equal(t, f.asset.ID, *risk.AffectedAssetID)

	check := bySource[models.SourceChecklist]
	assert.Equal(t, models.SeverityHigh, check.Severity)
	assert.Contains(t, check.Title, "A.8.8")
	assert.Contains(t, check.Description, "No patch process")
	assert.Equal(t, fallbackControlRecommendation, check.Recommendation)
	assert.Equal(t, "CISO", check.RemediationOwner)
	require.NotNil(t, check.RemediationDeadline)
	assert.Equal(t, f.control.ID, *check.RelatedControlID)
}

func TestGeneratedTextKeepsNamesVerbatim(t *testing.T) {
	store := testutil.NewMemStore()
	org, user := store.Organization(t, "Acme")
	asset := store.Asset(t, org.ID, "Сервер \"1С\"\tmain", models.AssetHardware, 5, 5, 5)
	vuln := store.AddVulnerability(models.Vulnerability{Code: "A01:2021", Name: "Broken Access Control"})

	av := models.AssetVulnerability{OrganizationID: org.ID, AssetID: asset.ID, VulnerabilityID: vuln.ID, Likelihood: 5, Impact: 5}
	av.ApplyRisk()
	require.NoError(t, store.Risks().Upsert(context.Background(), &av))

	svc := NewService(store, zap.NewNop())
	n, err := svc.AutoGenerate(context.Background(), org.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	list, err := svc.List(context.Background(), org.ID, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Description, "The asset \"Сервер \"1С\"\tmain\" (hardware)")
	assert.NotContains(t, list[0].Description, `\"`)
	assert.NotContains(t, list[0].Description, `\t`)
}

func TestAutoGenerateIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addRisk(t, f.vuln.ID, 4, 5)
	f.addAssessment(t, f.control.ID, models.ControlNonCompliant, "")

	first, err := f.svc.AutoGenerate(ctx, f.org.ID, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, 2, first)

	before, err := f.svc.List(ctx, f.org.ID, Filter{})
	require.NoError(t, err)

	second, err := f.svc.AutoGenerate(ctx, f.org.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, second)

	after, err := f.svc.List(ctx, f.org.ID, Filter{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAutoGenerateSkipsLowRisksAndOtherStatuses(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addRisk(t, f.vuln.ID, 2, 5) // 10 → medium
	f.addAssessment(t, f.control.ID, models.ControlPartial, "")

	n, err := f.svc.AutoGenerate(ctx, f.org.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "zero is a valid outcome")
}

func TestAutoGenerateOneFindingPerVulnerability(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	second := f.store.Asset(t, f.org.ID, "Admin portal", models.AssetSoftware, 3, 3, 3)

	f.addRisk(t, f.vuln.ID, 4, 5)
	av := models.AssetVulnerability{
		OrganizationID: f.org.ID, AssetID: second.ID, VulnerabilityID: f.vuln.ID, Likelihood: 3, Impact: 4,
	}
	av.ApplyRisk()
	require.NoError(t, f.store.Risks().Upsert(ctx, &av))

	n, err := f.svc.AutoGenerate(ctx, f.org.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "dedup key is the vulnerability")
}

func TestAutoGenerateFallbackRecommendation(t *testing.T) {
	f := setup(t)
	bare := f.store.AddVulnerability(models.Vulnerability{Code: "A10:2021", Name: "SSRF"})
	f.addRisk(t, bare.ID, 3, 4)

	n, err := f.svc.AutoGenerate(context.Background(), f.org.ID, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	list, err := f.svc.List(context.Background(), f.org.ID, Filter{})
	require.NoError(t, err)
	assert.Equal(t, fallbackRiskRecommendation, list[0].Recommendation)
	assert.Equal(t, models.SeverityHigh, list[0].Severity)
}

func TestAutoGenerateIgnoresManualFindings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addRisk(t, f.vuln.ID, 5, 5)

	vulnID := f.vuln.ID
	_, err := f.svc.CreateManual(ctx, f.org.ID, f.user.ID, CreateInput{
		Title: "Manual note", Description: "seen during interview", Severity: models.SeverityLow, VulnerabilityID: &vulnID,
	})
	require.NoError(t, err)

	n, err := f.svc.AutoGenerate(ctx, f.org.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only risk_assessment findings block regeneration")
}

func TestAutoGenerateRollsBack(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addRisk(t, f.vuln.ID, 4, 5)
	f.addAssessment(t, f.control.ID, models.ControlNonCompliant, "")
	f.store.Fail("audit_logs.create", errors.New("disk full"))

	_, err := f.svc.AutoGenerate(ctx, f.org.ID, f.user.ID)
	require.Error(t, err)

	list, err := f.store.Findings().List(ctx, repository.FindingFilter{OrganizationID: f.org.ID})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAutoGenerateDependencyFailure(t *testing.T) {
	f := setup(t)
	f.addRisk(t, f.vuln.ID, 4, 5)
	f.store.Fail("controls.assessments", errors.New("timeout"))

	n, err := f.svc.AutoGenerate(context.Background(), f.org.ID, f.user.ID)
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, apperr.ErrDependency))
}

func TestAutoGenerateTenantIsolation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addRisk(t, f.vuln.ID, 4, 5)

	other, otherUser := f.store.Organization(t, "Globex")
	n, err := f.svc.AutoGenerate(ctx, other.ID, otherUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = f.svc.AutoGenerate(ctx, f.org.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := f.svc.List(ctx, other.ID, Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateManualValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	valid := CreateInput{Title: "Weak passwords", Description: "Policy allows 6 chars", Severity: models.SeverityMedium}

	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"blank title", func(in *CreateInput) { in.Title = "   " }, "title"},
		{"empty description", func(in *CreateInput) { in.Description = "" }, "description"},
		{"bad severity", func(in *CreateInput) { in.Severity = "urgent" }, "severity"},
		{"reserved source", func(in *CreateInput) { in.Source = models.SourceChecklist }, "source"},
		{"likelihood out of range", func(in *CreateInput) { in.Likelihood = testutil.IntPtr(7) }, "likelihood"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.svc.CreateManual(ctx, f.org.ID, f.user.ID, in)

			var ae *apperr.Error
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Equal(t, tt.field, ae.Field)
		})
	}

	created, err := f.svc.CreateManual(ctx, f.org.ID, f.user.ID, valid)
	require.NoError(t, err)
	assert.Equal(t, models.SourceManual, created.Source)
	assert.Equal(t, models.FindingOpen, created.Status)
	assert.False(t, created.AIGenerated)
}

func TestCreateManualForeignAsset(t *testing.T) {
	f := setup(t)
	other, otherUser := f.store.Organization(t, "Globex")

	assetID := f.asset.ID
	_, err := f.svc.CreateManual(context.Background(), other.ID, otherUser.ID, CreateInput{
		Title: "x", Description: "y", Severity: models.SeverityLow, AffectedAssetID: &assetID,
	})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCreateManualAIGenerated(t *testing.T) {
	f := setup(t)
	created, err := f.svc.CreateManual(context.Background(), f.org.ID, f.user.ID, CreateInput{
		Title: "Suggested finding", Description: "from assistant", Severity: models.SeverityInformational,
		Source: models.SourceAIGenerated, AIExplanation: "pattern match",
	})
	require.NoError(t, err)
	assert.True(t, created.AIGenerated)
}

func TestUpdateLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	created, err := f.svc.CreateManual(ctx, f.org.ID, f.user.ID, CreateInput{
		Title: "Weak passwords", Description: "Policy allows 6 chars", Severity: models.SeverityMedium,
	})
	require.NoError(t, err)

	resolved := models.FindingResolved
	notes := "policy updated"
	updated, err := f.svc.Update(ctx, f.org.ID, f.user.ID, created.ID, UpdateInput{Status: &resolved, RemediationNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, models.FindingResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, "Weak passwords", updated.Title, "untouched fields survive")
	assert.Equal(t, notes, updated.RemediationNotes)

	reopened := models.FindingOpen
	updated, err = f.svc.Update(ctx, f.org.ID, f.user.ID, created.ID, UpdateInput{Status: &reopened})
	require.NoError(t, err)
	assert.Nil(t, updated.ResolvedAt)

	blank := " "
	_, err = f.svc.Update(ctx, f.org.ID, f.user.ID, created.ID, UpdateInput{Title: &blank})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	bad := models.FindingStatus("done")
	_, err = f.svc.Update(ctx, f.org.ID, f.user.ID, created.ID, UpdateInput{Status: &bad})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	other, otherUser := f.store.Organization(t, "Globex")
	_, err = f.svc.Update(ctx, other.ID, otherUser.ID, created.ID, UpdateInput{Status: &resolved})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	created, err := f.svc.CreateManual(ctx, f.org.ID, f.user.ID, CreateInput{
		Title: "t", Description: "d", Severity: models.SeverityLow,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.org.ID, f.user.ID, created.ID))
	_, err = f.svc.Get(ctx, f.org.ID, created.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addRisk(t, f.vuln.ID, 4, 5)
	f.addAssessment(t, f.control.ID, models.ControlNonCompliant, "")
	_, err := f.svc.AutoGenerate(ctx, f.org.ID, f.user.ID)
	require.NoError(t, err)

	st, err := f.svc.Stats(ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Critical: 1, High: 1, Open: 2}, st)

	critical, err := f.svc.List(ctx, f.org.ID, Filter{Severities: []models.FindingSeverity{models.SeverityCritical}})
	require.NoError(t, err)
	assert.Len(t, critical, 1)
}
