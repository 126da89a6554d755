package assets

import (
	"context"
	"errors"
	"testing"

	"iso-audit/internal/apperr"
	"iso-audit/internal/models"
	"iso-audit/internal/scoring"
	"iso-audit/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*Service, *testutil.MemStore, models.Organization, models.User) {
	t.Helper()
	store := testutil.NewMemStore()
	org, user := store.Organization(t, "Acme")
	return NewService(store, zap.NewNop()), store, org, user
}

func validInput() Input {
	return Input{
		Name:            "Core banking DB",
		Type:            models.AssetData,
		Confidentiality: 5,
		Integrity:       5,
		Availability:    5,
	}
}

func TestCreateComputesCriticality(t *testing.T) {
	svc, _, org, user := newService(t)
	ctx := context.Background()

	asset, err := svc.Create(ctx, org.ID, user.ID, validInput())
	require.NoError(t, err)

	assert.True(t, asset.CriticalityScore.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, scoring.CriticalityCritical, asset.Criticality)
	assert.True(t, asset.IsActive)
	assert.Equal(t, user.ID, asset.CreatedBy)
	assert.True(t, VerifyCriticality(*asset))
}

func TestCreateValidation(t *testing.T) {
	svc, store, org, user := newService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"empty name", func(in *Input) { in.Name = "" }, "name"},
		{"unknown type", func(in *Input) { in.Type = "cloud" }, "type"},
		{"confidentiality zero", func(in *Input) { in.Confidentiality = 0 }, "confidentiality"},
		{"integrity six", func(in *Input) { in.Integrity = 6 }, "integrity"},
		{"availability negative", func(in *Input) { in.Availability = -1 }, "availability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(ctx, org.ID, user.ID, in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))

			var ae *apperr.Error
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.field, ae.Field)
		})
	}

	list, err := store.Assets().List(ctx, org.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "invalid input must not be persisted")
}

func TestUpdateRecomputesCriticality(t *testing.T) {
	svc, _, org, user := newService(t)
	ctx := context.Background()

	asset, err := svc.Create(ctx, org.ID, user.ID, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Confidentiality, in.Integrity, in.Availability = 3, 2, 1
	updated, err := svc.Update(ctx, org.ID, user.ID, asset.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "2.15", updated.CriticalityScore.StringFixed(2))
	assert.Equal(t, scoring.CriticalityMedium, updated.Criticality)

	stored, err := svc.Get(ctx, org.ID, asset.ID)
	require.NoError(t, err)
	assert.True(t, VerifyCriticality(*stored))
	assert.Equal(t, scoring.CriticalityMedium, stored.Criticality)
}

func TestDeactivateHidesAsset(t *testing.T) {
	svc, _, org, user := newService(t)
	ctx := context.Background()

	asset, err := svc.Create(ctx, org.ID, user.ID, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, org.ID, user.ID, asset.ID))

	list, err := svc.List(ctx, org.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = svc.Deactivate(ctx, org.ID, user.ID, asset.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = svc.Update(ctx, org.ID, user.ID, asset.ID, validInput())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestTenantIsolation(t *testing.T) {
	svc, store, org, user := newService(t)
	other, otherUser := store.Organization(t, "Globex")
	ctx := context.Background()

	asset, err := svc.Create(ctx, org.ID, user.ID, validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, other.ID, asset.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = svc.Update(ctx, other.ID, otherUser.ID, asset.ID, validInput())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	err = svc.Deactivate(ctx, other.ID, otherUser.ID, asset.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	list, err := svc.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMutationsWriteActivity(t *testing.T) {
	svc, store, org, user := newService(t)
	ctx := context.Background()

	asset, err := svc.Create(ctx, org.ID, user.ID, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, org.ID, user.ID, asset.ID))

	logs, err := store.AuditLogs().List(ctx, org.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "delete", logs[0].Action)
	assert.Equal(t, "create", logs[1].Action)
	assert.Equal(t, asset.ID, logs[1].EntityID)
}
