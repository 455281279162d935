package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentRepository defines persistence for payments
type PaymentRepository interface {
	// FindByIDForOrg finds a payment by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Payment, error)
	// FindByTenant lists a tenant's payments, newest first
	FindByTenant(ctx context.Context, orgID, tenantID uuid.UUID, filter shared.Filter) ([]Payment, int64, error)
	// ExistsPaid reports whether a PAID payment exists for tenant and rent month
	ExistsPaid(ctx context.Context, tenantID uuid.UUID, rentMonth RentMonth) (bool, error)
	// LastPaidDate returns the latest payment date of the tenant's PAID payments, nil when none
	LastPaidDate(ctx context.Context, tenantID uuid.UUID) (*time.Time, error)
	// CountOutstanding counts PENDING and PARTIAL payments of the tenant
	CountOutstanding(ctx context.Context, tenantID uuid.UUID) (int64, error)
	// SumPaidByProperty totals PAID payments of a property
	SumPaidByProperty(ctx context.Context, propertyID uuid.UUID) (decimal.Decimal, int64, error)
	// Create inserts a payment. A second PAID payment for the same tenant and rent
	// month violates a unique index and yields shared.ErrDuplicatePayment.
	Create(ctx context.Context, p *Payment) error
	// SaveWithLock persists the payment guarded by its previous version
	SaveWithLock(ctx context.Context, p *Payment) error
}

// ReminderRepository defines persistence for rent reminders
type ReminderRepository interface {
	// Create inserts a reminder
	Create(ctx context.Context, r *Reminder) error
	// Save updates a reminder
	Save(ctx context.Context, r *Reminder) error
	// ExistsActive reports whether the tenant has an active reminder
	ExistsActive(ctx context.Context, tenantID uuid.UUID) (bool, error)
	// FindActiveDueForTenant lists the tenant's active reminders due on or before at
	FindActiveDueForTenant(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]*Reminder, error)
	// FindDue lists active reminders due on or before at across organizations
	FindDue(ctx context.Context, at time.Time, limit int) ([]*Reminder, error)
	// CancelAllForTenant cancels every active reminder of the tenant
	CancelAllForTenant(ctx context.Context, tenantID uuid.UUID, reason string, at time.Time) (int64, error)
}

// BatchRepository defines persistence for bulk payment batches
type BatchRepository interface {
	// FindByIDForOrg finds a batch by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*BulkPaymentBatch, error)
	// Save creates or updates a batch
	Save(ctx context.Context, b *BulkPaymentBatch) error
}
