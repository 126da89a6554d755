//go:build integration

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"iso-audit/internal/config"
	"iso-audit/internal/models"
	"iso-audit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func startPostgres(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("audit_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(&config.Config{DBDSN: dsn, DBConnectAttempts: 3}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	_, _, _, err = SeedCatalog(ctx, db)
	require.NoError(t, err)
	return NewStore(db)
}

func TestStoreIntegration(t *testing.T) {
	store := startPostgres(t)
	ctx := context.Background()

	user := models.User{Username: "lead@acme.test", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, store.Users().Create(ctx, &user))
	org := models.Organization{Name: "Acme", CreatedBy: user.ID}
	require.NoError(t, store.Organizations().Create(ctx, &org))

	asset := models.Asset{OrganizationID: org.ID, Name: "Core DB", Type: models.AssetData, Confidentiality: 5, Integrity: 5, Availability: 5, IsActive: true}
	asset.ApplyCriticality()
	require.NoError(t, store.Assets().Create(ctx, &asset))

	vulns, err := store.Vulnerabilities().List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, vulns)

	t.Run("catalog seed is idempotent", func(t *testing.T) {
		_, controls, seeded, err := SeedCatalog(ctx, store.db)
		require.NoError(t, err)

		stored, err := store.Controls().ListControls(ctx)
		require.NoError(t, err)
		assert.Len(t, stored, controls)
		assert.Len(t, vulns, seeded)
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup := models.User{Username: user.Username, PasswordHash: "y", Role: models.RoleViewer}
		err := store.Users().Create(ctx, &dup)
		assert.True(t, errors.Is(err, repository.ErrDuplicate))
	})

	t.Run("risk upsert keeps one row per pair", func(t *testing.T) {
		av := models.AssetVulnerability{OrganizationID: org.ID, AssetID: asset.ID, VulnerabilityID: vulns[0].ID, Likelihood: 2, Impact: 2}
		av.ApplyRisk()
		require.NoError(t, store.Risks().Upsert(ctx, &av))

		again := models.AssetVulnerability{OrganizationID: org.ID, AssetID: asset.ID, VulnerabilityID: vulns[0].ID, Likelihood: 5, Impact: 4}
		again.ApplyRisk()
		require.NoError(t, store.Risks().Upsert(ctx, &again))

		list, err := store.Risks().List(ctx, repository.RiskFilter{OrganizationID: org.ID})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 20, list[0].RiskScore)
		assert.True(t, list[0].RiskConsistent())
		assert.Equal(t, asset.Name, list[0].Asset.Name)
	})

	t.Run("assessment upsert keeps one row per control", func(t *testing.T) {
		controls, err := store.Controls().ListControls(ctx)
		require.NoError(t, err)

		for _, st := range []models.ControlStatus{models.ControlPartial, models.ControlNonCompliant} {
			a := models.ControlAssessment{OrganizationID: org.ID, ControlID: controls[0].ID, Status: st, ReviewedBy: user.ID}
			require.NoError(t, store.Controls().UpsertAssessment(ctx, &a))
		}

		list, err := store.Controls().ListAssessments(ctx, repository.AssessmentFilter{OrganizationID: org.ID})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.ControlNonCompliant, list[0].Status)
		assert.Equal(t, controls[0].Code, list[0].Control.Code)
	})

	t.Run("finding origin conflict does not abort the transaction", func(t *testing.T) {
		vid := vulns[1].ID
		newFinding := func(src models.FindingSource) *models.AuditFinding {
			return &models.AuditFinding{
				OrganizationID:  org.ID,
				Title:           "Injection detected on Core DB",
				Description:     "generated",
				Severity:        models.SeverityHigh,
				Status:          models.FindingOpen,
				Source:          src,
				VulnerabilityID: &vid,
				CreatedBy:       user.ID,
			}
		}

		err := store.Transaction(ctx, func(tx repository.Store) error {
			require.NoError(t, tx.Findings().Create(ctx, newFinding(models.SourceRiskAssessment)))
			err := tx.Findings().Create(ctx, newFinding(models.SourceRiskAssessment))
			assert.True(t, errors.Is(err, repository.ErrDuplicate))
			// после конфликта транзакция продолжает работать
			return tx.Findings().Create(ctx, newFinding(models.SourceManual))
		})
		require.NoError(t, err)

		list, err := store.Findings().List(ctx, repository.FindingFilter{OrganizationID: org.ID})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("report versions survive soft delete", func(t *testing.T) {
		v, err := store.Reports().NextVersion(ctx, org.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		report := models.AuditReport{
			OrganizationID: org.ID,
			Version:        v,
			Status:         models.ReportStatusFinal,
			Narrative:      models.ReportNarrative{Title: "Audit", AuditorName: "J. Doe"},
			Snapshot: models.ReportSnapshot{
				Assets:      models.SnapshotAssets{Total: 1, Critical: 1, ByType: map[string]int{"data": 1}},
				Compliance:  models.SnapshotCompliance{Score: 42},
				GeneratedAt: time.Now().UTC(),
			},
			GeneratedBy: user.ID,
			GeneratedAt: time.Now().UTC(),
		}
		require.NoError(t, store.Reports().Create(ctx, &report))

		require.NoError(t, store.Reports().UpdateNarrative(ctx, org.ID, report.ID, models.ReportNarrative{Title: "Audit (final)", AuditorName: "J. Doe"}))
		got, err := store.Reports().Get(ctx, org.ID, report.ID)
		require.NoError(t, err)
		assert.Equal(t, "Audit (final)", got.Narrative.Title)
		assert.Equal(t, 42, got.Snapshot.Compliance.Score)
		assert.Equal(t, map[string]int{"data": 1}, got.Snapshot.Assets.ByType)
		assert.Equal(t, 1, got.Version)

		require.NoError(t, store.Reports().Delete(ctx, org.ID, report.ID))
		_, err = store.Reports().Get(ctx, org.ID, report.ID)
		assert.True(t, errors.Is(err, repository.ErrNotFound))

		v, err = store.Reports().NextVersion(ctx, org.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("concurrent generations get distinct versions", func(t *testing.T) {
		start := make(chan struct{})
		versions := make([]int, 2)
		var g errgroup.Group
		for i := range versions {
			i := i
			g.Go(func() error {
				<-start
				return store.Transaction(ctx, func(tx repository.Store) error {
					v, err := tx.Reports().NextVersion(ctx, org.ID)
					if err != nil {
						return err
					}
					report := models.AuditReport{
						OrganizationID: org.ID,
						Version:        v,
						Status:         models.ReportStatusFinal,
						Narrative:      models.ReportNarrative{Title: "Parallel", AuditorName: "J. Doe"},
						GeneratedBy:    user.ID,
						GeneratedAt:    time.Now().UTC(),
					}
					if err := tx.Reports().Create(ctx, &report); err != nil {
						return err
					}
					versions[i] = v
					return nil
				})
			})
		}
		close(start)
		require.NoError(t, g.Wait())

		assert.ElementsMatch(t, []int{2, 3}, versions)

		_, err := store.Reports().NextVersion(ctx, 999999)
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("ensure admin runs once", func(t *testing.T) {
		cfg := &config.Config{AdminUsername: "root@audit.local", AdminPassword: "Admin123!"}
		require.NoError(t, EnsureAdmin(ctx, store, cfg, zap.NewNop()))

		n, err := store.Users().CountByRole(ctx, models.RoleAdmin)
		require.NoError(t, err)
		// lead@acme.test уже администратор, второй не создаётся
		assert.Equal(t, int64(1), n)
	})
}
