package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"github.com/propcore/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTenant(t *testing.T, propertyID, unitID uuid.UUID, email string) *tenancy.Tenant {
	t.Helper()
	tenant, err := tenancy.NewTenant(testutil.TestOrgID(), tenancy.NewTenantInput{
		PropertyID: propertyID,
		UnitID:     unitID,
		UnitNumber: "101",
		Name:       "Tenant " + email,
		Email:      email,
		RentAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	return tenant
}

func TestGormTenantRepository_Create_UniqueIndexes(t *testing.T) {
	ctx := context.Background()

	t.Run("second live tenant on the same unit is unit unavailable", func(t *testing.T) {
		repo := NewGormTenantRepository(testutil.NewSQLiteDB(t))
		propertyID, unitID := uuid.New(), uuid.New()
		require.NoError(t, repo.Create(ctx, newTenant(t, propertyID, unitID, "first@example.com")))

		err := repo.Create(ctx, newTenant(t, propertyID, unitID, "second@example.com"))

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrUnitUnavailable)
		assert.NotErrorIs(t, err, shared.ErrDuplicateTenant)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "unit_id", de.Field)
	})

	t.Run("same email in the property is a duplicate tenant", func(t *testing.T) {
		repo := NewGormTenantRepository(testutil.NewSQLiteDB(t))
		propertyID := uuid.New()
		require.NoError(t, repo.Create(ctx, newTenant(t, propertyID, uuid.New(), "same@example.com")))

		err := repo.Create(ctx, newTenant(t, propertyID, uuid.New(), "same@example.com"))

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrDuplicateTenant)
		assert.NotErrorIs(t, err, shared.ErrUnitUnavailable)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "email", de.Field)
	})

	t.Run("same unit in another property does not collide", func(t *testing.T) {
		repo := NewGormTenantRepository(testutil.NewSQLiteDB(t))
		unitID := uuid.New()
		require.NoError(t, repo.Create(ctx, newTenant(t, uuid.New(), unitID, "a@example.com")))
		assert.NoError(t, repo.Create(ctx, newTenant(t, uuid.New(), unitID, "b@example.com")))
	})
}
