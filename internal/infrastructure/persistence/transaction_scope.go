package persistence

import (
	"context"

	"github.com/propcore/backend/internal/application/chain"
	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"gorm.io/gorm"
)

// OutboxWriterFactory binds an outbox writer to a transaction
type OutboxWriterFactory interface {
	Writer(tx *gorm.DB) shared.OutboxWriter
}

// GormTransactionScope implements chain.TransactionScope using GORM transactions.
// Every repository handed to the chain, the outbox writer included, shares the transaction.
type GormTransactionScope struct {
	db     *gorm.DB
	outbox OutboxWriterFactory
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, outbox OutboxWriterFactory) *GormTransactionScope {
	return &GormTransactionScope{db: db, outbox: outbox}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back; otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos chain.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, outbox: s.outbox})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx     *gorm.DB
	outbox OutboxWriterFactory
}

func (r *gormTransactionalRepositories) Properties() property.PropertyRepository {
	return NewGormPropertyRepository(r.tx)
}

func (r *gormTransactionalRepositories) Units() property.UnitRepository {
	return NewGormUnitRepository(r.tx)
}

func (r *gormTransactionalRepositories) Expenses() property.ExpenseRepository {
	return NewGormExpenseRepository(r.tx)
}

func (r *gormTransactionalRepositories) Maintenance() property.MaintenanceRepository {
	return NewGormMaintenanceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Tenants() tenancy.TenantRepository {
	return NewGormTenantRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() payment.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Reminders() payment.ReminderRepository {
	return NewGormReminderRepository(r.tx)
}

func (r *gormTransactionalRepositories) Batches() payment.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

func (r *gormTransactionalRepositories) History() history.Repository {
	return NewGormHistoryRepository(r.tx)
}

// Outbox returns the outbox writer bound to the current transaction
func (r *gormTransactionalRepositories) Outbox() shared.OutboxWriter {
	return r.outbox.Writer(r.tx)
}

var (
	_ chain.TransactionScope = (*GormTransactionScope)(nil)
	_ chain.Repositories     = (*gormTransactionalRepositories)(nil)
)
