package payment_test

import (
	"context"
	"testing"

	paymentapp "github.com/propcore/backend/internal/application/payment"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"github.com/propcore/backend/internal/testutil/enginetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentService(e *enginetest.Engine) *paymentapp.PaymentService {
	return paymentapp.NewPaymentService(e.Runner, e.Payments, e.Tenants, e.Logger)
}

func currentMonth() string {
	return string(payment.RentMonthOf(shared.Now()))
}

// dueReminder stores an active reminder that fell due at the start of this month
func dueReminder(t *testing.T, e *enginetest.Engine, tenant *tenancy.Tenant) *payment.Reminder {
	t.Helper()
	r := payment.NewRentReminder(e.OrgID, tenant.ID, tenant.PropertyID, tenant.RentAmount, shared.Now().AddDate(0, -1, 0))
	require.False(t, r.NextRunDate.After(shared.Now()))
	require.NoError(t, e.Reminders.Create(context.Background(), r))
	return r
}

func TestPaymentService_RecordPaid(t *testing.T) {
	e := enginetest.New(t)
	svc := newPaymentService(e)
	ctx := context.Background()

	p, units := e.SeedProperty(t, "Rowan House", 1, decimal.NewFromInt(1000))
	tenant := e.SeedTenant(t, units[0], "Payer", "payer@example.com")
	dueReminder(t, e, tenant)

	resp, err := svc.Record(ctx, e.OrgID, e.UserID, paymentapp.RecordPaymentRequest{
		TenantID:  tenant.ID,
		Amount:    decimal.NewFromInt(1000),
		Status:    string(payment.PaymentStatusPaid),
		Method:    string(payment.PaymentMethodBankTransfer),
		RentMonth: currentMonth(),
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, resp.PropertyID)
	require.NotNil(t, resp.UnitID)
	assert.Equal(t, units[0].ID, *resp.UnitID)

	stored := e.Tenant(t, tenant.ID)
	assert.Equal(t, tenancy.TenantStatusActive, stored.Status)
	require.NotNil(t, stored.LastPaymentDate)

	cf := e.Property(t, p.ID).CashFlow
	assert.True(t, decimal.NewFromInt(1000).Equal(cf.Income))
	assert.True(t, decimal.NewFromInt(1000).Equal(cf.NetIncome))
	assert.Equal(t, int64(1), cf.PaymentCount)

	due, err := e.Reminders.FindActiveDueForTenant(ctx, tenant.ID, shared.Now())
	require.NoError(t, err)
	assert.Empty(t, due)
	active, err := e.Reminders.ExistsActive(ctx, tenant.ID)
	require.NoError(t, err)
	assert.True(t, active, "next month's reminder replaces the cancelled one")

	assert.ElementsMatch(t,
		[]string{shared.TaskAuditLog, shared.TaskNotification},
		e.OutboxTasks(t, payment.EventTypePaymentRecorded))
}

func TestPaymentService_RejectsSecondPaidPaymentForMonth(t *testing.T) {
	e := enginetest.New(t)
	svc := newPaymentService(e)
	ctx := context.Background()

	p, units := e.SeedProperty(t, "Alder Place", 1, decimal.NewFromInt(1000))
	tenant := e.SeedTenant(t, units[0], "Twice", "twice@example.com")
	req := paymentapp.RecordPaymentRequest{
		TenantID:  tenant.ID,
		Amount:    decimal.NewFromInt(1000),
		RentMonth: currentMonth(),
	}

	_, err := svc.Record(ctx, e.OrgID, e.UserID, req)
	require.NoError(t, err)

	_, err = svc.Record(ctx, e.OrgID, e.UserID, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrDuplicatePayment)
	assert.True(t, shared.IsConsistencyViolation(err))

	payments, err := svc.ListByTenant(ctx, e.OrgID, tenant.ID, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), payments.Total)
	assert.True(t, decimal.NewFromInt(1000).Equal(e.Property(t, p.ID).CashFlow.Income))

	t.Run("pending payments for the month are still accepted", func(t *testing.T) {
		req.Status = string(payment.PaymentStatusPending)
		_, err := svc.Record(ctx, e.OrgID, e.UserID, req)
		require.NoError(t, err)
	})
}

func TestPaymentService_Validation(t *testing.T) {
	e := enginetest.New(t)
	svc := newPaymentService(e)
	ctx := context.Background()

	_, units := e.SeedProperty(t, "Linden Row", 1, decimal.NewFromInt(1000))
	other, _ := e.SeedProperty(t, "Other Row", 1, decimal.NewFromInt(1000))
	tenant := e.SeedTenant(t, units[0], "Valid", "valid@example.com")

	tests := []struct {
		name string
		req  paymentapp.RecordPaymentRequest
	}{
		{
			name: "non-positive amount",
			req:  paymentapp.RecordPaymentRequest{TenantID: tenant.ID, Amount: decimal.Zero},
		},
		{
			name: "malformed rent month",
			req:  paymentapp.RecordPaymentRequest{TenantID: tenant.ID, Amount: decimal.NewFromInt(10), RentMonth: "2024-13"},
		},
		{
			name: "property the tenant does not live in",
			req:  paymentapp.RecordPaymentRequest{TenantID: tenant.ID, PropertyID: &other.ID, Amount: decimal.NewFromInt(10)},
		},
		{
			name: "recorded as refunded",
			req:  paymentapp.RecordPaymentRequest{TenantID: tenant.ID, Amount: decimal.NewFromInt(10), Status: "REFUNDED"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(ctx, e.OrgID, e.UserID, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := svc.Record(ctx, e.OrgID, e.UserID, paymentapp.RecordPaymentRequest{
			TenantID: other.ID,
			Amount:   decimal.NewFromInt(10),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPaymentService_Discount(t *testing.T) {
	e := enginetest.New(t)
	svc := newPaymentService(e)
	ctx := context.Background()

	p, units := e.SeedProperty(t, "Yew Court", 1, decimal.NewFromInt(1000))
	tenant := e.SeedTenant(t, units[0], "Saver", "saver@example.com")

	resp, err := svc.Record(ctx, e.OrgID, e.UserID, paymentapp.RecordPaymentRequest{
		TenantID: tenant.ID,
		Amount:   decimal.NewFromInt(1000),
		Discount: &paymentapp.DiscountRequest{Type: "PERCENTAGE", Value: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(900).Equal(resp.Amount))
	assert.True(t, decimal.NewFromInt(1000).Equal(resp.OriginalAmount))
	require.NotNil(t, resp.Discount)
	assert.True(t, decimal.NewFromInt(100).Equal(resp.Discount.Amount))
	assert.True(t, decimal.NewFromInt(900).Equal(e.Property(t, p.ID).CashFlow.Income))

	stored, err := e.Payments.FindByIDForOrg(ctx, e.OrgID, resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Discount, "discount survives the jsonb column")
	assert.Equal(t, payment.DiscountTypePercentage, stored.Discount.Type)
	assert.True(t, decimal.NewFromInt(10).Equal(stored.Discount.Value))
	assert.True(t, decimal.NewFromInt(100).Equal(stored.Discount.Amount))

	cf := e.Property(t, p.ID).CashFlow
	require.NotNil(t, cf.CalculatedAt, "cash flow timestamp survives the round trip")
	assert.False(t, cf.CalculatedAt.IsZero())
}

func TestPaymentService_ChangeStatus(t *testing.T) {
	e := enginetest.New(t)
	svc := newPaymentService(e)
	ctx := context.Background()

	p, units := e.SeedProperty(t, "Holly Close", 1, decimal.NewFromInt(1000))
	tenant := e.SeedTenant(t, units[0], "Later", "later@example.com")

	pending, err := svc.Record(ctx, e.OrgID, e.UserID, paymentapp.RecordPaymentRequest{
		TenantID: tenant.ID,
		Amount:   decimal.NewFromInt(1000),
		Status:   string(payment.PaymentStatusPending),
	})
	require.NoError(t, err)
	assert.Equal(t, tenancy.TenantStatusLate, e.Tenant(t, tenant.ID).Status)
	assert.True(t, e.Property(t, p.ID).CashFlow.Income.IsZero())

	paid, err := svc.ChangeStatus(ctx, e.OrgID, e.UserID, pending.ID, paymentapp.ChangePaymentStatusRequest{
		Status: string(payment.PaymentStatusPaid),
	})
	require.NoError(t, err)
	assert.Equal(t, string(payment.PaymentStatusPaid), paid.Status)
	assert.Equal(t, tenancy.TenantStatusActive, e.Tenant(t, tenant.ID).Status)
	assert.True(t, decimal.NewFromInt(1000).Equal(e.Property(t, p.ID).CashFlow.Income))

	_, err = svc.ChangeStatus(ctx, e.OrgID, e.UserID, pending.ID, paymentapp.ChangePaymentStatusRequest{
		Status: string(payment.PaymentStatusPending),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	refunded, err := svc.ChangeStatus(ctx, e.OrgID, e.UserID, pending.ID, paymentapp.ChangePaymentStatusRequest{
		Status: string(payment.PaymentStatusRefunded),
		Reason: "bounced",
	})
	require.NoError(t, err)
	assert.Equal(t, "bounced", refunded.StatusReason)
	assert.Equal(t, tenancy.TenantStatusLate, e.Tenant(t, tenant.ID).Status)
	assert.True(t, e.Property(t, p.ID).CashFlow.Income.IsZero())
}
