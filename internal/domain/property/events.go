package property

import (
	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeProperty    = "Property"
	AggregateTypeUnit        = "Unit"
	AggregateTypeExpense     = "Expense"
	AggregateTypeMaintenance = "MaintenanceRequest"
)

// Event type constants
const (
	EventTypePropertyAdded        = "property.added"
	EventTypePropertyArchived     = "property.archived"
	EventTypeUnitsAdded           = "property.units_added"
	EventTypeUnitStatusChanged    = "unit.status_changed"
	EventTypeUnitRentChanged      = "unit.rent_changed"
	EventTypeMaintenanceCreated   = "maintenance.created"
	EventTypeMaintenanceCompleted = "maintenance.completed"
	EventTypeExpenseRecorded      = "expense.recorded"
	EventTypeExpenseVoided        = "expense.voided"
)

// PropertyAddedEvent is raised when a property and its initial units are created
type PropertyAddedEvent struct {
	shared.BaseDomainEvent
	PropertyID    uuid.UUID `json:"property_id"`
	Name          string    `json:"name"`
	OwnerID       uuid.UUID `json:"owner_id"`
	NumberOfUnits int       `json:"number_of_units"`
}

// NewPropertyAddedEvent creates a new PropertyAddedEvent
func NewPropertyAddedEvent(p *Property) *PropertyAddedEvent {
	return &PropertyAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyAdded, AggregateTypeProperty, p.ID, p.OrgID),
		PropertyID:      p.ID,
		Name:            p.Name,
		OwnerID:         p.OwnerID,
		NumberOfUnits:   p.NumberOfUnits,
	}
}

// PropertyArchivedEvent is raised when a property is archived with its units
type PropertyArchivedEvent struct {
	shared.BaseDomainEvent
	PropertyID uuid.UUID `json:"property_id"`
	Name       string    `json:"name"`
}

// NewPropertyArchivedEvent creates a new PropertyArchivedEvent
func NewPropertyArchivedEvent(p *Property) *PropertyArchivedEvent {
	return &PropertyArchivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertyArchived, AggregateTypeProperty, p.ID, p.OrgID),
		PropertyID:      p.ID,
		Name:            p.Name,
	}
}

// UnitsAddedEvent is raised when a property's unit count grows
type UnitsAddedEvent struct {
	shared.BaseDomainEvent
	PropertyID  uuid.UUID `json:"property_id"`
	UnitNumbers []string  `json:"unit_numbers"`
}

// NewUnitsAddedEvent creates a new UnitsAddedEvent
func NewUnitsAddedEvent(p *Property, units []*Unit) *UnitsAddedEvent {
	numbers := make([]string, 0, len(units))
	for _, u := range units {
		numbers = append(numbers, u.UnitNumber)
	}
	return &UnitsAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitsAdded, AggregateTypeProperty, p.ID, p.OrgID),
		PropertyID:      p.ID,
		UnitNumbers:     numbers,
	}
}

// UnitStatusChangedEvent is raised on a manual unit status change
type UnitStatusChangedEvent struct {
	shared.BaseDomainEvent
	UnitID     uuid.UUID  `json:"unit_id"`
	PropertyID uuid.UUID  `json:"property_id"`
	UnitNumber string     `json:"unit_number"`
	OldStatus  UnitStatus `json:"old_status"`
	NewStatus  UnitStatus `json:"new_status"`
}

// NewUnitStatusChangedEvent creates a new UnitStatusChangedEvent
func NewUnitStatusChangedEvent(u *Unit, old UnitStatus) *UnitStatusChangedEvent {
	return &UnitStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitStatusChanged, AggregateTypeUnit, u.ID, u.OrgID),
		UnitID:          u.ID,
		PropertyID:      u.PropertyID,
		UnitNumber:      u.UnitNumber,
		OldStatus:       old,
		NewStatus:       u.Status,
	}
}

// UnitRentChangedEvent is raised when a unit's asking rent changes
type UnitRentChangedEvent struct {
	shared.BaseDomainEvent
	UnitID     uuid.UUID       `json:"unit_id"`
	PropertyID uuid.UUID       `json:"property_id"`
	OldRent    decimal.Decimal `json:"old_rent"`
	NewRent    decimal.Decimal `json:"new_rent"`
}

// NewUnitRentChangedEvent creates a new UnitRentChangedEvent
func NewUnitRentChangedEvent(u *Unit, old decimal.Decimal) *UnitRentChangedEvent {
	return &UnitRentChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitRentChanged, AggregateTypeUnit, u.ID, u.OrgID),
		UnitID:          u.ID,
		PropertyID:      u.PropertyID,
		OldRent:         old,
		NewRent:         u.RentAmount,
	}
}

// MaintenanceCreatedEvent is raised when a maintenance request is opened
type MaintenanceCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID   uuid.UUID           `json:"request_id"`
	PropertyID  uuid.UUID           `json:"property_id"`
	UnitID      uuid.UUID           `json:"unit_id"`
	TenantID    *uuid.UUID          `json:"tenant_id,omitempty"`
	Title       string              `json:"title"`
	Priority    MaintenancePriority `json:"priority"`
	UnitBlocked bool                `json:"unit_blocked"`
}

// NewMaintenanceCreatedEvent creates a new MaintenanceCreatedEvent
func NewMaintenanceCreatedEvent(m *MaintenanceRequest) *MaintenanceCreatedEvent {
	return &MaintenanceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaintenanceCreated, AggregateTypeMaintenance, m.ID, m.OrgID),
		RequestID:       m.ID,
		PropertyID:      m.PropertyID,
		UnitID:          m.UnitID,
		TenantID:        m.TenantID,
		Title:           m.Title,
		Priority:        m.Priority,
		UnitBlocked:     m.UnitBlocked,
	}
}

// MaintenanceCompletedEvent is raised when a maintenance request is completed
type MaintenanceCompletedEvent struct {
	shared.BaseDomainEvent
	RequestID  uuid.UUID       `json:"request_id"`
	PropertyID uuid.UUID       `json:"property_id"`
	UnitID     uuid.UUID       `json:"unit_id"`
	ActualCost decimal.Decimal `json:"actual_cost"`
}

// NewMaintenanceCompletedEvent creates a new MaintenanceCompletedEvent
func NewMaintenanceCompletedEvent(m *MaintenanceRequest) *MaintenanceCompletedEvent {
	return &MaintenanceCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaintenanceCompleted, AggregateTypeMaintenance, m.ID, m.OrgID),
		RequestID:       m.ID,
		PropertyID:      m.PropertyID,
		UnitID:          m.UnitID,
		ActualCost:      m.ActualCost,
	}
}

// ExpenseRecordedEvent is raised when an expense is booked
type ExpenseRecordedEvent struct {
	shared.BaseDomainEvent
	ExpenseID  uuid.UUID       `json:"expense_id"`
	PropertyID uuid.UUID       `json:"property_id"`
	Category   ExpenseCategory `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewExpenseRecordedEvent creates a new ExpenseRecordedEvent
func NewExpenseRecordedEvent(e *Expense) *ExpenseRecordedEvent {
	return &ExpenseRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseRecorded, AggregateTypeExpense, e.ID, e.OrgID),
		ExpenseID:       e.ID,
		PropertyID:      e.PropertyID,
		Category:        e.Category,
		Amount:          e.Amount,
	}
}

// ExpenseVoidedEvent is raised when an expense is voided
type ExpenseVoidedEvent struct {
	shared.BaseDomainEvent
	ExpenseID  uuid.UUID       `json:"expense_id"`
	PropertyID uuid.UUID       `json:"property_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason,omitempty"`
}

// NewExpenseVoidedEvent creates a new ExpenseVoidedEvent
func NewExpenseVoidedEvent(e *Expense) *ExpenseVoidedEvent {
	return &ExpenseVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseVoided, AggregateTypeExpense, e.ID, e.OrgID),
		ExpenseID:       e.ID,
		PropertyID:      e.PropertyID,
		Amount:          e.Amount,
		Reason:          e.VoidReason,
	}
}
