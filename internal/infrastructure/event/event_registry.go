package event

import (
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/tenancy"
)

// RegisterAllEvents registers every engine event with the serializer.
// The outbox processor cannot decode an event type missing here.
func RegisterAllEvents(serializer *EventSerializer) {
	// Property context
	serializer.Register(property.EventTypePropertyAdded, &property.PropertyAddedEvent{})
	serializer.Register(property.EventTypePropertyArchived, &property.PropertyArchivedEvent{})
	serializer.Register(property.EventTypeUnitsAdded, &property.UnitsAddedEvent{})
	serializer.Register(property.EventTypeUnitStatusChanged, &property.UnitStatusChangedEvent{})
	serializer.Register(property.EventTypeUnitRentChanged, &property.UnitRentChangedEvent{})
	serializer.Register(property.EventTypeMaintenanceCreated, &property.MaintenanceCreatedEvent{})
	serializer.Register(property.EventTypeMaintenanceCompleted, &property.MaintenanceCompletedEvent{})
	serializer.Register(property.EventTypeExpenseRecorded, &property.ExpenseRecordedEvent{})
	serializer.Register(property.EventTypeExpenseVoided, &property.ExpenseVoidedEvent{})

	// Tenancy context
	serializer.Register(tenancy.EventTypeTenantAdded, &tenancy.TenantAddedEvent{})
	serializer.Register(tenancy.EventTypeTenantTransferred, &tenancy.TenantTransferredEvent{})
	serializer.Register(tenancy.EventTypeTenantStatusChanged, &tenancy.TenantStatusChangedEvent{})
	serializer.Register(tenancy.EventTypeTenantArchived, &tenancy.TenantArchivedEvent{})
	serializer.Register(tenancy.EventTypeTenantRentChanged, &tenancy.TenantRentChangedEvent{})

	// Payment context
	serializer.Register(payment.EventTypePaymentRecorded, &payment.PaymentRecordedEvent{})
	serializer.Register(payment.EventTypePaymentStatusChanged, &payment.PaymentStatusChangedEvent{})
	serializer.Register(payment.EventTypeBatchCompleted, &payment.BatchCompletedEvent{})
}
