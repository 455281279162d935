// Package enginetest wires the consistency engine against an in-memory SQLite
// database for service and scenario tests: real repositories, the outbox
// writer in every transaction and a chain runner.
package enginetest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/application/chain"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"github.com/propcore/backend/internal/infrastructure/event"
	"github.com/propcore/backend/internal/infrastructure/persistence"
	"github.com/propcore/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Engine holds the wired engine and direct (non-transactional) repositories for assertions
type Engine struct {
	DB         *gorm.DB
	Logger     *zap.Logger
	Runner     *chain.Runner
	Serializer *event.EventSerializer
	Publisher  *event.OutboxPublisher

	Properties    *persistence.GormPropertyRepository
	Units         *persistence.GormUnitRepository
	Expenses      *persistence.GormExpenseRepository
	Maintenance   *persistence.GormMaintenanceRepository
	Tenants       *persistence.GormTenantRepository
	Payments      *persistence.GormPaymentRepository
	Reminders     *persistence.GormReminderRepository
	Batches       *persistence.GormBatchRepository
	History       *persistence.GormHistoryRepository
	Audit         *persistence.GormAuditRepository
	Notifications *persistence.GormNotificationRepository
	Outbox        *event.GormOutboxRepository

	OrgID  uuid.UUID
	UserID uuid.UUID
}

// New creates an engine over a fresh in-memory database
func New(t *testing.T) *Engine {
	t.Helper()
	return NewWithDB(t, testutil.NewSQLiteDB(t))
}

// NewWithDB creates an engine over an already migrated database
func NewWithDB(t *testing.T, db *gorm.DB) *Engine {
	t.Helper()
	logger := zap.NewNop()

	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	publisher := event.NewOutboxPublisher(serializer, chain.FanOut{}, shared.DefaultMaxRetries)
	scope := persistence.NewGormTransactionScope(db, publisher)

	return &Engine{
		DB:         db,
		Logger:     logger,
		Runner:     chain.NewRunner(scope, chain.Config{}, logger),
		Serializer: serializer,
		Publisher:  publisher,

		Properties:    persistence.NewGormPropertyRepository(db),
		Units:         persistence.NewGormUnitRepository(db),
		Expenses:      persistence.NewGormExpenseRepository(db),
		Maintenance:   persistence.NewGormMaintenanceRepository(db),
		Tenants:       persistence.NewGormTenantRepository(db),
		Payments:      persistence.NewGormPaymentRepository(db),
		Reminders:     persistence.NewGormReminderRepository(db),
		Batches:       persistence.NewGormBatchRepository(db),
		History:       persistence.NewGormHistoryRepository(db),
		Audit:         persistence.NewGormAuditRepository(db),
		Notifications: persistence.NewGormNotificationRepository(db),
		Outbox:        event.NewGormOutboxRepository(db),

		OrgID:  testutil.TestOrgID(),
		UserID: testutil.TestUserID(),
	}
}

// SeedProperty stores a property with count units at rent and recomputes its aggregates
func (e *Engine) SeedProperty(t *testing.T, name string, count int, rent decimal.Decimal) (*property.Property, []*property.Unit) {
	t.Helper()

	p, err := property.NewProperty(e.OrgID, e.UserID, name, property.Address{
		Line1:      "1 Main Street",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	})
	require.NoError(t, err)
	units, err := p.MaterializeUnits(count, 0, rent)
	require.NoError(t, err)

	err = e.Runner.Run(context.Background(), "test.seed_property", e.UserID,
		chain.Do("seed", func(ctx context.Context, tx *chain.Tx) error {
			if err := tx.Properties().Save(ctx, p); err != nil {
				return err
			}
			return tx.Units().Create(ctx, units...)
		}),
		chain.RecomputePropertyAggregates(p.ID),
	)
	require.NoError(t, err)
	return p, units
}

// SeedTenant places a tenant into unit the way tenant creation does
func (e *Engine) SeedTenant(t *testing.T, unit *property.Unit, name, email string) *tenancy.Tenant {
	t.Helper()

	var tenant *tenancy.Tenant
	err := e.Runner.Run(context.Background(), tenancy.EventTypeTenantAdded, e.UserID,
		chain.Do("seed", func(ctx context.Context, tx *chain.Tx) error {
			u, err := tx.Units().FindByID(ctx, unit.ID)
			if err != nil {
				return err
			}
			tenant, err = tenancy.NewTenant(e.OrgID, tenancy.NewTenantInput{
				PropertyID: u.PropertyID,
				UnitID:     u.ID,
				UnitNumber: u.UnitNumber,
				Name:       name,
				Email:      email,
				RentAmount: u.RentAmount,
			})
			if err != nil {
				return err
			}
			if err := tx.Tenants().Create(ctx, tenant); err != nil {
				return err
			}
			record, err := chain.OccupyUnit(ctx, tx, u, tenant.ID, u.RentAmount, "seeded")
			if err != nil {
				return err
			}
			if err := tx.Record(ctx, chain.UnitRecords(record), nil); err != nil {
				return err
			}
			return tx.Emit(ctx, tenant)
		}),
		chain.RecomputePropertyAggregates(unit.PropertyID),
	)
	require.NoError(t, err)
	return tenant
}

// Property reloads a property
func (e *Engine) Property(t *testing.T, id uuid.UUID) *property.Property {
	t.Helper()
	p, err := e.Properties.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

// Unit reloads a unit
func (e *Engine) Unit(t *testing.T, id uuid.UUID) *property.Unit {
	t.Helper()
	u, err := e.Units.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

// Tenant reloads a tenant
func (e *Engine) Tenant(t *testing.T, id uuid.UUID) *tenancy.Tenant {
	t.Helper()
	tenant, err := e.Tenants.FindByID(context.Background(), id)
	require.NoError(t, err)
	return tenant
}

// OutboxTasks returns the tasks queued for eventType, in insertion order
func (e *Engine) OutboxTasks(t *testing.T, eventType string) []string {
	t.Helper()
	var tasks []string
	err := e.DB.Table("outbox_events").
		Where("event_type = ?", eventType).
		Order("created_at ASC").
		Pluck("task", &tasks).Error
	require.NoError(t, err)
	return tasks
}
