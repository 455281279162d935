package tenancy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInput() NewTenantInput {
	return NewTenantInput{
		PropertyID:     uuid.New(),
		UnitID:         uuid.New(),
		UnitNumber:     "001",
		Name:           "Ada Moyo",
		Email:          "  Ada.Moyo@Example.com ",
		RentAmount:     decimal.NewFromInt(1000),
		LeaseStartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func createTestTenant(t *testing.T) *Tenant {
	t.Helper()
	tenant, err := NewTenant(uuid.New(), createTestInput())
	require.NoError(t, err)
	return tenant
}

func TestNewTenant(t *testing.T) {
	t.Run("creates pending tenant", func(t *testing.T) {
		tenant := createTestTenant(t)
		assert.Equal(t, TenantStatusPending, tenant.Status)
		assert.Equal(t, shared.LifecycleLive, tenant.Lifecycle)
		assert.Equal(t, "ada.moyo@example.com", tenant.Email)
		assert.True(t, tenant.HoldsUnit())
		assert.Nil(t, tenant.LeaseEndDate)

		events := tenant.GetDomainEvents()
		require.Len(t, events, 1)
		added, ok := events[0].(*TenantAddedEvent)
		require.True(t, ok)
		assert.Equal(t, *tenant.UnitID, added.UnitID)
		assert.Equal(t, "001", added.UnitNumber)
	})

	t.Run("derives lease end from duration", func(t *testing.T) {
		in := createTestInput()
		in.LeaseDurationMonths = 12
		tenant, err := NewTenant(uuid.New(), in)
		require.NoError(t, err)
		require.NotNil(t, tenant.LeaseEndDate)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *tenant.LeaseEndDate)
	})

	t.Run("explicit lease end wins", func(t *testing.T) {
		in := createTestInput()
		in.LeaseDurationMonths = 12
		end := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
		in.LeaseEndDate = &end
		tenant, err := NewTenant(uuid.New(), in)
		require.NoError(t, err)
		assert.Equal(t, end, *tenant.LeaseEndDate)
	})

	tests := []struct {
		name   string
		mutate func(*NewTenantInput)
		field  string
	}{
		{"missing name", func(in *NewTenantInput) { in.Name = "" }, "name"},
		{"bad email", func(in *NewTenantInput) { in.Email = "not-an-email" }, "email"},
		{"missing email", func(in *NewTenantInput) { in.Email = "" }, "email"},
		{"negative rent", func(in *NewTenantInput) { in.RentAmount = decimal.NewFromInt(-5) }, "rent_amount"},
		{"missing unit", func(in *NewTenantInput) { in.UnitID = uuid.Nil }, "unit_id"},
		{"lease end before start", func(in *NewTenantInput) {
			end := in.LeaseStartDate.AddDate(0, -1, 0)
			in.LeaseEndDate = &end
		}, "lease_end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := createTestInput()
			tt.mutate(&in)
			_, err := NewTenant(uuid.New(), in)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, shared.CodeValidation, de.Code)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestTenant_Discount(t *testing.T) {
	tenant := createTestTenant(t)
	expires := shared.Now().Add(48 * time.Hour)
	require.NoError(t, tenant.ApplyDiscount(decimal.NewFromInt(100), &expires))

	assert.True(t, tenant.EffectiveRent(shared.Now()).Equal(decimal.NewFromInt(900)))
	assert.False(t, tenant.ClearExpiredDiscount(shared.Now()))

	later := expires.Add(time.Hour)
	assert.True(t, tenant.EffectiveRent(later).Equal(decimal.NewFromInt(1000)), "expired discount no longer applies")
	assert.True(t, tenant.ClearExpiredDiscount(later))
	assert.True(t, tenant.DiscountAmount.IsZero())
	assert.Nil(t, tenant.DiscountExpiresAt)

	assert.ErrorIs(t, tenant.ApplyDiscount(decimal.NewFromInt(5000), nil), shared.ErrInvalidInput)
}

func TestTenant_RecomputePaymentStatus(t *testing.T) {
	tenant := createTestTenant(t)
	tenant.ClearDomainEvents()
	paid := shared.Now()

	assert.True(t, tenant.RecomputePaymentStatus(true, &paid))
	assert.Equal(t, TenantStatusActive, tenant.Status)
	assert.Equal(t, paid, *tenant.LastPaymentDate)
	require.Len(t, tenant.GetDomainEvents(), 1)

	assert.False(t, tenant.RecomputePaymentStatus(true, nil), "no change when already active")

	assert.True(t, tenant.RecomputePaymentStatus(false, nil))
	assert.Equal(t, TenantStatusLate, tenant.Status)
	assert.Equal(t, paid, *tenant.LastPaymentDate, "older dates never overwrite")
}

func TestTenant_RecomputePaymentStatus_IgnoresNonOccupants(t *testing.T) {
	tenant := createTestTenant(t)
	_, err := tenant.ChangeStatus(TenantStatusInactive, "moved out")
	require.NoError(t, err)
	tenant.VacateUnit(shared.Now())

	assert.False(t, tenant.RecomputePaymentStatus(true, nil))
	assert.Equal(t, TenantStatusInactive, tenant.Status)
}

func TestTenant_ChangeStatus(t *testing.T) {
	t.Run("non-active status releases unit", func(t *testing.T) {
		tenant := createTestTenant(t)
		releases, err := tenant.ChangeStatus(TenantStatusTerminated, "lease ended")
		require.NoError(t, err)
		assert.True(t, releases)
		assert.Equal(t, TenantStatusTerminated, tenant.Status)
	})

	t.Run("active to late keeps unit", func(t *testing.T) {
		tenant := createTestTenant(t)
		releases, err := tenant.ChangeStatus(TenantStatusLate, "")
		require.NoError(t, err)
		assert.False(t, releases)
	})

	t.Run("terminated is final", func(t *testing.T) {
		tenant := createTestTenant(t)
		_, err := tenant.ChangeStatus(TenantStatusTerminated, "")
		require.NoError(t, err)
		_, err = tenant.ChangeStatus(TenantStatusInactive, "")
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("cannot reactivate without unit", func(t *testing.T) {
		tenant := createTestTenant(t)
		_, err := tenant.ChangeStatus(TenantStatusInactive, "")
		require.NoError(t, err)
		tenant.VacateUnit(shared.Now())

		_, err = tenant.ChangeStatus(TenantStatusActive, "")
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("invalid status", func(t *testing.T) {
		tenant := createTestTenant(t)
		_, err := tenant.ChangeStatus("ARCHIVED", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestTenant_Archive(t *testing.T) {
	tenant := createTestTenant(t)
	unitID := *tenant.UnitID
	tenant.ClearDomainEvents()
	at := shared.Now()

	require.NoError(t, tenant.Archive(at))
	assert.True(t, tenant.IsArchived())
	assert.Nil(t, tenant.UnitID)
	assert.False(t, tenant.HoldsUnit())
	assert.Equal(t, TenantStatusPending, tenant.Status, "business status is kept")

	archived, ok := tenant.GetDomainEvents()[0].(*TenantArchivedEvent)
	require.True(t, ok)
	assert.Equal(t, unitID, *archived.UnitID)

	assert.ErrorIs(t, tenant.Archive(at), shared.ErrInvalidState)
}

func TestTenant_MoveTo(t *testing.T) {
	tenant := createTestTenant(t)
	require.NoError(t, tenant.ApplyDiscount(decimal.NewFromInt(900), nil))
	dest := uuid.New()
	prop := uuid.New()

	tenant.MoveTo(prop, dest, "002", decimal.NewFromInt(800), shared.Now())

	assert.Equal(t, prop, tenant.PropertyID)
	assert.Equal(t, dest, *tenant.UnitID)
	assert.Equal(t, "002", tenant.UnitNumber)
	assert.True(t, tenant.DiscountAmount.Equal(decimal.NewFromInt(800)), "discount clamps to new rent")
}
