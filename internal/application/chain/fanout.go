package chain

import (
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
)

// fanOutTasks is the fixed table of best-effort tasks per event type.
// Events absent from the table have no fan-out.
var fanOutTasks = map[string][]string{
	payment.EventTypePaymentRecorded:      {shared.TaskAuditLog, shared.TaskNotification},
	payment.EventTypePaymentStatusChanged: {shared.TaskAuditLog},
	payment.EventTypeBatchCompleted:       {shared.TaskAuditLog},

	tenancy.EventTypeTenantAdded:         {shared.TaskNotification, shared.TaskReminderCreate, shared.TaskAuditLog},
	tenancy.EventTypeTenantTransferred:   {shared.TaskAuditLog},
	tenancy.EventTypeTenantStatusChanged: {shared.TaskAuditLog},
	tenancy.EventTypeTenantArchived:      {shared.TaskAuditLog},
	tenancy.EventTypeTenantRentChanged:   {shared.TaskAuditLog},

	property.EventTypePropertyAdded:        {shared.TaskAuditLog, shared.TaskNotification},
	property.EventTypePropertyArchived:     {shared.TaskAuditLog},
	property.EventTypeUnitsAdded:           {shared.TaskAuditLog},
	property.EventTypeUnitStatusChanged:    {shared.TaskAuditLog},
	property.EventTypeUnitRentChanged:      {shared.TaskAuditLog},
	property.EventTypeMaintenanceCreated:   {shared.TaskAuditLog, shared.TaskNotification},
	property.EventTypeMaintenanceCompleted: {shared.TaskAuditLog},
	property.EventTypeExpenseRecorded:      {shared.TaskAuditLog},
	property.EventTypeExpenseVoided:        {shared.TaskAuditLog},
}

// FanOut resolves the tasks of an event type from the fixed table
type FanOut struct{}

// TasksFor returns the fan-out tasks of eventType
func (FanOut) TasksFor(eventType string) []string {
	return fanOutTasks[eventType]
}

// EventTypes returns every event type that has fan-out
func (FanOut) EventTypes() []string {
	types := make([]string, 0, len(fanOutTasks))
	for t := range fanOutTasks {
		types = append(types, t)
	}
	return types
}
