package payment_test

import (
	"context"
	"sync"
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

func newBatchService(e *enginetest.Engine, maxItems int) (*paymentapp.BatchService, *paymentapp.PaymentService) {
	recorder := newPaymentService(e)
	return paymentapp.NewBatchService(e.Runner, recorder, e.Batches, e.Tenants, maxItems, e.Logger), recorder
}

func seedTenants(t *testing.T, e *enginetest.Engine, n int, rent int64) []*tenancy.Tenant {
	t.Helper()
	_, units := e.SeedProperty(t, "Batch Block", n, decimal.NewFromInt(rent))
	tenants := make([]*tenancy.Tenant, n)
	for i, u := range units {
		tenants[i] = e.SeedTenant(t, u, "Tenant "+u.UnitNumber, "batch"+u.UnitNumber+"@example.com")
	}
	return tenants
}

func TestBatchService_PartialBatch(t *testing.T) {
	e := enginetest.New(t)
	batches, recorder := newBatchService(e, 0)
	ctx := context.Background()

	tenants := seedTenants(t, e, 5, 1000)
	month := currentMonth()

	// One tenant already paid this month; its batch item must fail.
	_, err := recorder.Record(ctx, e.OrgID, e.UserID, paymentapp.RecordPaymentRequest{
		TenantID:  tenants[2].ID,
		Amount:    decimal.NewFromInt(1000),
		RentMonth: month,
	})
	require.NoError(t, err)

	items := make([]paymentapp.BatchItemRequest, len(tenants))
	for i, tenant := range tenants {
		items[i] = paymentapp.BatchItemRequest{TenantID: tenant.ID, Amount: decimal.NewFromInt(1000)}
	}
	created, err := batches.Create(ctx, e.OrgID, e.UserID, paymentapp.CreateBatchRequest{
		Name:      "June rent",
		RentMonth: month,
		Items:     items,
	})
	require.NoError(t, err)
	assert.Equal(t, string(payment.BatchStatusDraft), created.Status)
	assert.Equal(t, 5, created.TotalPayments)

	resp, err := batches.Process(ctx, e.OrgID, e.UserID, created.ID)
	require.NoError(t, err)

	assert.Equal(t, string(payment.BatchStatusPartial), resp.Status)
	assert.Equal(t, 5, resp.TotalPayments)
	assert.Equal(t, 4, resp.SuccessfulPayments)
	assert.Equal(t, 1, resp.FailedPayments)
	assert.InDelta(t, 80.0, resp.Summary.SuccessRate, 0.001)
	assert.True(t, decimal.NewFromInt(4000).Equal(resp.Summary.TotalAmount))
	assert.True(t, decimal.NewFromInt(1000).Equal(resp.Summary.AvgPaymentAmount))
	assert.NotNil(t, resp.CompletedAt)

	failed := resp.Items[2]
	assert.Equal(t, string(payment.ItemStatusFailed), failed.Status)
	assert.Equal(t, shared.CodeDuplicatePayment, failed.ErrorCode)
	assert.Nil(t, failed.PaymentID)
	for i, it := range resp.Items {
		if i == 2 {
			continue
		}
		assert.Equal(t, string(payment.ItemStatusSuccess), it.Status)
		require.NotNil(t, it.PaymentID)
		assert.Equal(t, tenancy.TenantStatusActive, e.Tenant(t, it.TenantID).Status)
	}

	stored, err := batches.GetByID(ctx, e.OrgID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Status, stored.Status)

	_, err = batches.Process(ctx, e.OrgID, e.UserID, created.ID)
	assert.Error(t, err, "a finished batch cannot run again")
}

func TestBatchService_FromFilter(t *testing.T) {
	e := enginetest.New(t)
	batches, _ := newBatchService(e, 0)
	ctx := context.Background()

	tenants := seedTenants(t, e, 3, 750)
	propertyID := tenants[0].PropertyID

	created, err := batches.Create(ctx, e.OrgID, e.UserID, paymentapp.CreateBatchRequest{
		RentMonth: currentMonth(),
		Filter:    &paymentapp.BatchFilterRequest{PropertyID: &propertyID},
	})
	require.NoError(t, err)
	require.Len(t, created.Items, 3)
	for _, it := range created.Items {
		assert.True(t, decimal.NewFromInt(750).Equal(it.Amount))
	}

	resp, err := batches.Process(ctx, e.OrgID, e.UserID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(payment.BatchStatusCompleted), resp.Status)
	assert.InDelta(t, 100.0, resp.Summary.SuccessRate, 0.001)
	assert.True(t, decimal.NewFromInt(2250).Equal(e.Property(t, propertyID).CashFlow.Income))
}

func TestBatchService_CreateValidation(t *testing.T) {
	e := enginetest.New(t)
	batches, _ := newBatchService(e, 2)
	ctx := context.Background()

	tenants := seedTenants(t, e, 3, 500)
	items := make([]paymentapp.BatchItemRequest, len(tenants))
	for i, tenant := range tenants {
		items[i] = paymentapp.BatchItemRequest{TenantID: tenant.ID, Amount: decimal.NewFromInt(500)}
	}

	tests := []struct {
		name string
		req  paymentapp.CreateBatchRequest
	}{
		{
			name: "neither items nor filter",
			req:  paymentapp.CreateBatchRequest{RentMonth: currentMonth()},
		},
		{
			name: "both items and filter",
			req: paymentapp.CreateBatchRequest{
				RentMonth: currentMonth(),
				Items:     items[:1],
				Filter:    &paymentapp.BatchFilterRequest{},
			},
		},
		{
			name: "more items than allowed",
			req:  paymentapp.CreateBatchRequest{RentMonth: currentMonth(), Items: items},
		},
		{
			name: "bad rent month",
			req:  paymentapp.CreateBatchRequest{RentMonth: "June", Items: items[:1]},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := batches.Create(ctx, e.OrgID, e.UserID, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*payment.Reminder
}

func (n *recordingNotifier) RentDue(_ context.Context, r *payment.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, r)
	return nil
}

func TestReminderService_Sweep(t *testing.T) {
	e := enginetest.New(t)
	notifier := &recordingNotifier{}
	svc := paymentapp.NewReminderService(e.Runner, e.Reminders, notifier, e.Logger)
	ctx := context.Background()

	tenants := seedTenants(t, e, 2, 1000)
	holder, gone := tenants[0], tenants[1]

	due := dueReminder(t, e, holder)
	// A tenant that left its unit keeps a stale reminder.
	gone.VacateUnit(shared.Now())
	_, err := gone.ChangeStatus(tenancy.TenantStatusInactive, "moved out")
	require.NoError(t, err)
	require.NoError(t, e.Tenants.SaveWithLock(ctx, gone))
	dueReminder(t, e, gone)

	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Due)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Cancelled)
	assert.Zero(t, result.Failed)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, due.ID, notifier.sent[0].ID)

	next, err := e.Reminders.ExistsActive(ctx, holder.ID)
	require.NoError(t, err)
	assert.True(t, next)
	stale, err := e.Reminders.ExistsActive(ctx, gone.ID)
	require.NoError(t, err)
	assert.False(t, stale)

	again, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Due)
}
