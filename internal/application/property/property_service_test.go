package property_test

import (
	"context"
	"testing"

	propertyapp "github.com/propcore/backend/internal/application/property"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/testutil/enginetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPropertyService(e *enginetest.Engine) *propertyapp.PropertyService {
	return propertyapp.NewPropertyService(e.Runner, e.Properties, e.Units, e.Logger)
}

func createRequest(units int, rent int64) propertyapp.CreatePropertyRequest {
	return propertyapp.CreatePropertyRequest{
		Name: "Maple Court",
		Address: propertyapp.AddressRequest{
			Line1: "12 Maple Street",
			City:  "Springfield",
		},
		NumberOfUnits: units,
		DefaultRent:   decimal.NewFromInt(rent),
	}
}

func TestPropertyService_Create(t *testing.T) {
	e := enginetest.New(t)
	svc := newPropertyService(e)
	ctx := context.Background()

	t.Run("materializes units and empty aggregates", func(t *testing.T) {
		resp, err := svc.Create(ctx, e.OrgID, e.UserID, createRequest(3, 1000))
		require.NoError(t, err)

		assert.Equal(t, 3, resp.NumberOfUnits)
		assert.Equal(t, 0, resp.OccupiedUnits)
		assert.Equal(t, 0, resp.OccupancyRate)
		assert.Equal(t, e.UserID, resp.OwnerID)
		require.Len(t, resp.Units, 3)
		assert.Equal(t, "001", resp.Units[0].UnitNumber)
		for _, u := range resp.Units {
			assert.Equal(t, string(property.UnitStatusAvailable), u.Status)
			assert.True(t, decimal.NewFromInt(1000).Equal(u.RentAmount))
		}
		assert.True(t, resp.CashFlow.NetIncome.IsZero())
		assert.ElementsMatch(t,
			[]string{shared.TaskAuditLog, shared.TaskNotification},
			e.OutboxTasks(t, property.EventTypePropertyAdded))
	})

	t.Run("rejects too many units", func(t *testing.T) {
		_, err := svc.Create(ctx, e.OrgID, e.UserID, createRequest(1001, 1000))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects negative rent", func(t *testing.T) {
		_, err := svc.Create(ctx, e.OrgID, e.UserID, createRequest(1, -5))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("other organizations cannot read it", func(t *testing.T) {
		resp, err := svc.Create(ctx, e.OrgID, e.UserID, createRequest(0, 0))
		require.NoError(t, err)

		_, err = svc.GetByID(ctx, e.UserID, resp.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPropertyService_OccupancyFollowsTenants(t *testing.T) {
	e := enginetest.New(t)
	svc := newPropertyService(e)
	ctx := context.Background()

	p, units := e.SeedProperty(t, "Oak Tower", 10, decimal.NewFromInt(900))
	for i := 0; i < 5; i++ {
		e.SeedTenant(t, units[i], "Tenant", "tenant"+units[i].UnitNumber+"@example.com")
	}

	resp, err := svc.GetByID(ctx, e.OrgID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, resp.NumberOfUnits)
	assert.Equal(t, 5, resp.OccupiedUnits)
	assert.Equal(t, 50, resp.OccupancyRate)
}

func TestPropertyService_AddUnits(t *testing.T) {
	e := enginetest.New(t)
	svc := newPropertyService(e)
	ctx := context.Background()

	created, err := svc.Create(ctx, e.OrgID, e.UserID, createRequest(2, 800))
	require.NoError(t, err)

	resp, err := svc.AddUnits(ctx, e.OrgID, e.UserID, created.ID, propertyapp.AddUnitsRequest{
		Count:      2,
		RentAmount: decimal.NewFromInt(950),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.NumberOfUnits)

	numbers := make([]string, len(resp.Units))
	for i, u := range resp.Units {
		numbers[i] = u.UnitNumber
	}
	assert.ElementsMatch(t, []string{"001", "002", "003", "004"}, numbers)
}

func TestPropertyService_Archive(t *testing.T) {
	e := enginetest.New(t)
	svc := newPropertyService(e)
	ctx := context.Background()

	t.Run("blocked by live tenants", func(t *testing.T) {
		p, units := e.SeedProperty(t, "Busy House", 2, decimal.NewFromInt(700))
		e.SeedTenant(t, units[0], "Ann", "ann@example.com")

		_, err := svc.Archive(ctx, e.OrgID, e.UserID, p.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrActiveTenantsExist)
		assert.False(t, e.Property(t, p.ID).IsArchived())
	})

	t.Run("cascades to units", func(t *testing.T) {
		p, units := e.SeedProperty(t, "Empty House", 2, decimal.NewFromInt(700))

		resp, err := svc.Archive(ctx, e.OrgID, e.UserID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, string(shared.LifecycleArchived), resp.Lifecycle)
		assert.NotNil(t, resp.ArchivedAt)
		for _, u := range units {
			assert.Equal(t, property.UnitStatusArchived, e.Unit(t, u.ID).Status)
		}
	})
}
