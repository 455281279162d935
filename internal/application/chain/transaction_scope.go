package chain

import (
	"context"

	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
)

// TransactionScope runs a function against repositories that share one database transaction.
// If the function returns an error, the transaction is rolled back; otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository the engine writes through.
// All repositories returned share the same underlying transaction, including
// the outbox writer, so fan-out tasks commit together with the state they describe.
type Repositories interface {
	Properties() property.PropertyRepository
	Units() property.UnitRepository
	Expenses() property.ExpenseRepository
	Maintenance() property.MaintenanceRepository
	Tenants() tenancy.TenantRepository
	Payments() payment.PaymentRepository
	Reminders() payment.ReminderRepository
	Batches() payment.BatchRepository
	History() history.Repository
	Outbox() shared.OutboxWriter
}
