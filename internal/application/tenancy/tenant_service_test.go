package tenancy_test

import (
	"context"
	"testing"
	"time"

	tenancyapp "github.com/propcore/backend/internal/application/tenancy"
	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"github.com/propcore/backend/internal/testutil/enginetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTenantService(e *enginetest.Engine) *tenancyapp.TenantService {
	return tenancyapp.NewTenantService(e.Runner, e.Tenants, e.History, e.Logger)
}

func createTenant(t *testing.T, e *enginetest.Engine, svc *tenancyapp.TenantService, unit *property.Unit, email string) *tenancyapp.TenantResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), e.OrgID, e.UserID, tenancyapp.CreateTenantRequest{
		PropertyID: unit.PropertyID,
		UnitID:     unit.ID,
		Name:       "Jordan Lee",
		Email:      email,
	})
	require.NoError(t, err)
	return resp
}

// seedPaid stores a PAID payment directly, bypassing the payment chain
func seedPaid(t *testing.T, e *enginetest.Engine, tenant *tenancy.Tenant, paidAt time.Time) {
	t.Helper()
	p, err := payment.NewPayment(e.OrgID, payment.NewPaymentInput{
		TenantID:    tenant.ID,
		PropertyID:  tenant.PropertyID,
		Amount:      tenant.RentAmount,
		Status:      payment.PaymentStatusPaid,
		PaymentDate: paidAt,
	}, shared.Now())
	require.NoError(t, err)
	require.NoError(t, e.Payments.Create(context.Background(), p))
}

func TestTenantService_Create(t *testing.T) {
	e := enginetest.New(t)
	svc := newTenantService(e)
	ctx := context.Background()

	p, units := e.SeedProperty(t, "Aspen Yard", 2, decimal.NewFromInt(1000))

	t.Run("occupies the unit", func(t *testing.T) {
		resp := createTenant(t, e, svc, units[0], "Jordan@Example.com")

		assert.Equal(t, string(tenancy.TenantStatusPending), resp.Status)
		assert.Equal(t, "jordan@example.com", resp.Email)
		assert.True(t, decimal.NewFromInt(1000).Equal(resp.RentAmount))
		require.NotNil(t, resp.UnitID)

		unit := e.Unit(t, units[0].ID)
		assert.Equal(t, property.UnitStatusOccupied, unit.Status)
		require.NotNil(t, unit.TenantID)
		assert.Equal(t, resp.ID, *unit.TenantID)

		prop := e.Property(t, p.ID)
		assert.Equal(t, 1, prop.OccupiedUnits)
		assert.Equal(t, 50, prop.OccupancyRate)

		movements, err := svc.Movements(ctx, e.OrgID, resp.ID, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, movements.Items, 1)
		assert.Equal(t, string(history.MovementKindMoveIn), movements.Items[0].Kind)

		assert.ElementsMatch(t,
			[]string{shared.TaskNotification, shared.TaskReminderCreate, shared.TaskAuditLog},
			e.OutboxTasks(t, tenancy.EventTypeTenantAdded))
	})

	t.Run("rejects an occupied unit", func(t *testing.T) {
		_, err := svc.Create(ctx, e.OrgID, e.UserID, tenancyapp.CreateTenantRequest{
			PropertyID: p.ID,
			UnitID:     units[0].ID,
			Name:       "Second",
			Email:      "second@example.com",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrUnitUnavailable)
		assert.True(t, shared.IsConsistencyViolation(err))
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, e.OrgID, e.UserID, tenancyapp.CreateTenantRequest{
			PropertyID: p.ID,
			UnitID:     units[1].ID,
			Name:       "Copy",
			Email:      "jordan@example.com",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrDuplicateTenant)
		// The failed chain leaves the unit untouched.
		assert.Equal(t, property.UnitStatusAvailable, e.Unit(t, units[1].ID).Status)
	})
}

func TestTenantService_Transfer(t *testing.T) {
	e := enginetest.New(t)
	svc := newTenantService(e)
	ctx := context.Background()

	from, fromUnits := e.SeedProperty(t, "Low Street", 1, decimal.NewFromInt(1000))
	to, toUnits := e.SeedProperty(t, "High Street", 1, decimal.NewFromInt(1200))
	tenant := createTenant(t, e, svc, fromUnits[0], "mover@example.com")

	resp, err := svc.Transfer(ctx, e.OrgID, e.UserID, tenant.ID, tenancyapp.TransferTenantRequest{
		PropertyID: to.ID,
		UnitID:     toUnits[0].ID,
		Reason:     "upgrade",
	})
	require.NoError(t, err)

	rc := resp.Movement.RentChange
	assert.Equal(t, string(history.MovementKindTransfer), resp.Movement.Kind)
	assert.True(t, decimal.NewFromInt(1000).Equal(rc.OldRent))
	assert.True(t, decimal.NewFromInt(1200).Equal(rc.NewRent))
	assert.True(t, decimal.NewFromInt(200).Equal(rc.ChangeAmount))
	assert.True(t, decimal.NewFromInt(20).Equal(rc.ChangePercentage))
	require.NotNil(t, resp.Movement.FromUnitID)
	assert.Equal(t, fromUnits[0].ID, *resp.Movement.FromUnitID)

	assert.Equal(t, to.ID, resp.Tenant.PropertyID)
	assert.True(t, decimal.NewFromInt(1200).Equal(resp.Tenant.RentAmount))

	source := e.Unit(t, fromUnits[0].ID)
	assert.Equal(t, property.UnitStatusAvailable, source.Status)
	assert.Nil(t, source.TenantID)
	require.NotNil(t, source.History.LastVacatedDate)
	assert.False(t, source.History.LastVacatedDate.IsZero())
	assert.Equal(t, property.UnitStatusOccupied, e.Unit(t, toUnits[0].ID).Status)

	// One moved-out record on the source (after the create's moved-in) and one
	// moved-in record on the destination.
	sourceLog, _, err := e.History.ListUnitHistory(ctx, e.OrgID, fromUnits[0].ID, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, history.UnitActionMovedOut, unitActions(sourceLog)[0])
	assert.Contains(t, unitActions(sourceLog), history.UnitActionMovedIn)
	destLog, _, err := e.History.ListUnitHistory(ctx, e.OrgID, toUnits[0].ID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, destLog, 1)
	assert.Equal(t, history.UnitActionMovedIn, destLog[0].Action)
	require.NotNil(t, destLog[0].TenantID)
	assert.Equal(t, tenant.ID, *destLog[0].TenantID)
	movedOut := 0
	for _, action := range unitActions(sourceLog) {
		if action == history.UnitActionMovedOut {
			movedOut++
		}
	}
	assert.Equal(t, 1, movedOut)

	assert.Equal(t, 0, e.Property(t, from.ID).OccupiedUnits)
	assert.Equal(t, 100, e.Property(t, to.ID).OccupancyRate)

	t.Run("same unit is rejected", func(t *testing.T) {
		_, err := svc.Transfer(ctx, e.OrgID, e.UserID, tenant.ID, tenancyapp.TransferTenantRequest{
			PropertyID: to.ID,
			UnitID:     toUnits[0].ID,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("source unit mismatch is a consistency violation", func(t *testing.T) {
		wrong := fromUnits[0].ID
		_, err := svc.Transfer(ctx, e.OrgID, e.UserID, tenant.ID, tenancyapp.TransferTenantRequest{
			PropertyID: from.ID,
			UnitID:     fromUnits[0].ID,
			FromUnitID: &wrong,
		})
		require.Error(t, err)
		assert.True(t, shared.IsConsistencyViolation(err))
		assert.ErrorIs(t, err, shared.ErrConsistency)
		assert.Equal(t, property.UnitStatusOccupied, e.Unit(t, toUnits[0].ID).Status)
		assert.Equal(t, property.UnitStatusAvailable, e.Unit(t, fromUnits[0].ID).Status)
	})

	t.Run("future transfer date is rejected", func(t *testing.T) {
		future := time.Now().Add(48 * time.Hour)
		_, err := svc.Transfer(ctx, e.OrgID, e.UserID, tenant.ID, tenancyapp.TransferTenantRequest{
			PropertyID:   from.ID,
			UnitID:       fromUnits[0].ID,
			TransferDate: &future,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Equal(t, property.UnitStatusOccupied, e.Unit(t, toUnits[0].ID).Status)
	})

	t.Run("occupied destination is rejected", func(t *testing.T) {
		other := createTenant(t, e, svc, e.Unit(t, fromUnits[0].ID), "other@example.com")
		_, err := svc.Transfer(ctx, e.OrgID, e.UserID, other.ID, tenancyapp.TransferTenantRequest{
			PropertyID: to.ID,
			UnitID:     toUnits[0].ID,
		})
		assert.ErrorIs(t, err, shared.ErrUnitUnavailable)
		assert.Equal(t, property.UnitStatusOccupied, e.Unit(t, fromUnits[0].ID).Status)
	})
}

func TestTenantService_TransferDated(t *testing.T) {
	e := enginetest.New(t)
	svc := newTenantService(e)
	ctx := context.Background()

	_, fromUnits := e.SeedProperty(t, "Elm Row", 1, decimal.NewFromInt(900))
	to, toUnits := e.SeedProperty(t, "Oak Row", 1, decimal.NewFromInt(900))

	leaseStart := time.Now().UTC().AddDate(0, -2, 0)
	created, err := svc.Create(ctx, e.OrgID, e.UserID, tenancyapp.CreateTenantRequest{
		PropertyID:     fromUnits[0].PropertyID,
		UnitID:         fromUnits[0].ID,
		Name:           "Dana Fox",
		Email:          "dana@example.com",
		LeaseStartDate: &leaseStart,
	})
	require.NoError(t, err)

	t.Run("date before the move-in is rejected", func(t *testing.T) {
		early := leaseStart.AddDate(0, 0, -1)
		_, err := svc.Transfer(ctx, e.OrgID, e.UserID, created.ID, tenancyapp.TransferTenantRequest{
			PropertyID:   to.ID,
			UnitID:       toUnits[0].ID,
			TransferDate: &early,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	transferredAt := time.Now().UTC().AddDate(0, 0, -7).Truncate(time.Second)
	source := fromUnits[0].ID
	resp, err := svc.Transfer(ctx, e.OrgID, e.UserID, created.ID, tenancyapp.TransferTenantRequest{
		PropertyID:   to.ID,
		UnitID:       toUnits[0].ID,
		FromUnitID:   &source,
		TransferDate: &transferredAt,
	})
	require.NoError(t, err)

	assert.True(t, transferredAt.Equal(resp.Movement.EffectiveDate))
	vacated := e.Unit(t, fromUnits[0].ID).History.LastVacatedDate
	require.NotNil(t, vacated)
	assert.True(t, transferredAt.Equal(*vacated))
	occupied := e.Unit(t, toUnits[0].ID).History.LastOccupiedDate
	require.NotNil(t, occupied)
	assert.True(t, transferredAt.Equal(*occupied))
	require.NotNil(t, resp.Tenant.MoveInDate)
	assert.True(t, transferredAt.Equal(*resp.Tenant.MoveInDate))
}

func unitActions(records []history.UnitHistory) []history.UnitAction {
	actions := make([]history.UnitAction, len(records))
	for i, r := range records {
		actions[i] = r.Action
	}
	return actions
}

func TestTenantService_ChangeStatus(t *testing.T) {
	e := enginetest.New(t)
	svc := newTenantService(e)
	ctx := context.Background()

	p, units := e.SeedProperty(t, "Pine Lane", 1, decimal.NewFromInt(800))
	tenant := createTenant(t, e, svc, units[0], "leaver@example.com")

	resp, err := svc.ChangeStatus(ctx, e.OrgID, e.UserID, tenant.ID, tenancyapp.ChangeTenantStatusRequest{
		Status: string(tenancy.TenantStatusInactive),
	})
	require.NoError(t, err)
	assert.Equal(t, string(tenancy.TenantStatusInactive), resp.Status)
	assert.Nil(t, resp.UnitID)
	assert.NotNil(t, resp.MoveOutDate)

	assert.Equal(t, property.UnitStatusAvailable, e.Unit(t, units[0].ID).Status)
	assert.Equal(t, 0, e.Property(t, p.ID).OccupiedUnits)

	_, err = svc.ChangeStatus(ctx, e.OrgID, e.UserID, tenant.ID, tenancyapp.ChangeTenantStatusRequest{
		Status: string(tenancy.TenantStatusActive),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	// Transferring an inactive tenant back into a unit makes it pending again.
	moved, err := svc.Transfer(ctx, e.OrgID, e.UserID, tenant.ID, tenancyapp.TransferTenantRequest{
		PropertyID: p.ID,
		UnitID:     units[0].ID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(tenancy.TenantStatusPending), moved.Tenant.Status)
	assert.Nil(t, moved.Movement.FromUnitID)
}

func TestTenantService_ChangeRent(t *testing.T) {
	e := enginetest.New(t)
	svc := newTenantService(e)
	ctx := context.Background()

	_, units := e.SeedProperty(t, "Spruce Park", 1, decimal.NewFromInt(1000))
	tenant := createTenant(t, e, svc, units[0], "rent@example.com")

	discount := decimal.NewFromInt(100)
	resp, err := svc.ChangeRent(ctx, e.OrgID, e.UserID, tenant.ID, tenancyapp.ChangeTenantRentRequest{
		RentAmount:     decimal.NewFromInt(1100),
		DiscountAmount: &discount,
		UpdateUnitRent: true,
	})
	require.NoError(t, err)

	assert.Equal(t, string(history.MovementKindRentChange), resp.Movement.Kind)
	assert.True(t, decimal.NewFromInt(100).Equal(resp.Movement.RentChange.ChangeAmount))
	assert.True(t, decimal.NewFromInt(10).Equal(resp.Movement.RentChange.ChangePercentage))
	assert.True(t, decimal.NewFromInt(1000).Equal(resp.Tenant.EffectiveRent))

	unit := e.Unit(t, units[0].ID)
	assert.True(t, decimal.NewFromInt(1100).Equal(unit.RentAmount))
	require.NotEmpty(t, unit.History.RentHistory)

	_, err = svc.ChangeRent(ctx, e.OrgID, e.UserID, tenant.ID, tenancyapp.ChangeTenantRentRequest{
		RentAmount: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestTenantService_Archive(t *testing.T) {
	e := enginetest.New(t)
	svc := newTenantService(e)
	ctx := context.Background()

	p, units := e.SeedProperty(t, "Willow Way", 2, decimal.NewFromInt(900))

	t.Run("blocked by outstanding payments", func(t *testing.T) {
		tenant := e.SeedTenant(t, units[0], "Owes", "owes@example.com")
		pending, err := payment.NewPayment(e.OrgID, payment.NewPaymentInput{
			TenantID:   tenant.ID,
			PropertyID: tenant.PropertyID,
			Amount:     decimal.NewFromInt(900),
			Status:     payment.PaymentStatusPending,
		}, shared.Now())
		require.NoError(t, err)
		require.NoError(t, e.Payments.Create(ctx, pending))

		_, err = svc.Archive(ctx, e.OrgID, e.UserID, tenant.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrActivePaymentsExist)
		assert.Equal(t, property.UnitStatusOccupied, e.Unit(t, units[0].ID).Status)
	})

	t.Run("frees the unit", func(t *testing.T) {
		tenant := e.SeedTenant(t, units[1], "Leaves", "leaves@example.com")

		resp, err := svc.Archive(ctx, e.OrgID, e.UserID, tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, string(shared.LifecycleArchived), resp.Lifecycle)
		assert.Nil(t, resp.UnitID)
		assert.Equal(t, property.UnitStatusAvailable, e.Unit(t, units[1].ID).Status)
		assert.Equal(t, 1, e.Property(t, p.ID).OccupiedUnits)

		_, err = svc.Archive(ctx, e.OrgID, e.UserID, tenant.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		// The email is free again once the tenant is archived.
		createTenant(t, e, svc, e.Unit(t, units[1].ID), "leaves@example.com")
	})
}

func TestLateSweeper_Sweep(t *testing.T) {
	e := enginetest.New(t)
	svc := newTenantService(e)
	sweeper := tenancyapp.NewLateSweeper(e.Runner, e.Tenants, e.Logger)
	ctx := context.Background()

	_, units := e.SeedProperty(t, "Hazel Court", 2, decimal.NewFromInt(700))
	overdue := e.SeedTenant(t, units[0], "Overdue", "overdue@example.com")
	current := e.SeedTenant(t, units[1], "Current", "current@example.com")

	for _, tenant := range []*tenancy.Tenant{overdue, current} {
		_, err := svc.ChangeStatus(ctx, e.OrgID, e.UserID, tenant.ID, tenancyapp.ChangeTenantStatusRequest{
			Status: string(tenancy.TenantStatusActive),
		})
		require.NoError(t, err)
	}
	seedPaid(t, e, overdue, shared.Now().AddDate(0, 0, -45))
	seedPaid(t, e, current, shared.Now().AddDate(0, 0, -3))

	result, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.MadeLate)
	assert.Zero(t, result.Failed)

	assert.Equal(t, tenancy.TenantStatusLate, e.Tenant(t, overdue.ID).Status)
	assert.Equal(t, tenancy.TenantStatusActive, e.Tenant(t, current.ID).Status)
	require.NotNil(t, e.Tenant(t, current.ID).LastPaymentDate)
}
