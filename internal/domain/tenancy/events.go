package tenancy

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeTenant is the aggregate type of tenants
const AggregateTypeTenant = "Tenant"

// Event type constants
const (
	EventTypeTenantAdded         = "tenant.added"
	EventTypeTenantTransferred   = "tenant.transferred"
	EventTypeTenantStatusChanged = "tenant.status_changed"
	EventTypeTenantArchived      = "tenant.archived"
	EventTypeTenantRentChanged   = "tenant.rent_changed"
)

// TenantAddedEvent is raised when a tenant moves into a unit on creation
type TenantAddedEvent struct {
	shared.BaseDomainEvent
	TenantID       uuid.UUID       `json:"tenant_id"`
	PropertyID     uuid.UUID       `json:"property_id"`
	UnitID         uuid.UUID       `json:"unit_id"`
	UnitNumber     string          `json:"unit_number"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	RentAmount     decimal.Decimal `json:"rent_amount"`
	LeaseStartDate time.Time       `json:"lease_start_date"`
}

// NewTenantAddedEvent creates a new TenantAddedEvent
func NewTenantAddedEvent(t *Tenant) *TenantAddedEvent {
	e := &TenantAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantAdded, AggregateTypeTenant, t.ID, t.OrgID),
		TenantID:        t.ID,
		PropertyID:      t.PropertyID,
		UnitNumber:      t.UnitNumber,
		Name:            t.Name,
		Email:           t.Email,
		RentAmount:      t.RentAmount,
		LeaseStartDate:  t.LeaseStartDate,
	}
	if t.UnitID != nil {
		e.UnitID = *t.UnitID
	}
	return e
}

// TenantTransferredEvent is raised when a tenant moves between units
type TenantTransferredEvent struct {
	shared.BaseDomainEvent
	TenantID       uuid.UUID       `json:"tenant_id"`
	MovementID     uuid.UUID       `json:"movement_id"`
	FromPropertyID uuid.UUID       `json:"from_property_id"`
	FromUnitID     uuid.UUID       `json:"from_unit_id"`
	ToPropertyID   uuid.UUID       `json:"to_property_id"`
	ToUnitID       uuid.UUID       `json:"to_unit_id"`
	OldRent        decimal.Decimal `json:"old_rent"`
	NewRent        decimal.Decimal `json:"new_rent"`
	Reason         string          `json:"reason,omitempty"`
}

// NewTenantTransferredEvent creates a new TenantTransferredEvent
func NewTenantTransferredEvent(t *Tenant, movementID, fromProperty, fromUnit uuid.UUID, oldRent decimal.Decimal, reason string) *TenantTransferredEvent {
	e := &TenantTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantTransferred, AggregateTypeTenant, t.ID, t.OrgID),
		TenantID:        t.ID,
		MovementID:      movementID,
		FromPropertyID:  fromProperty,
		FromUnitID:      fromUnit,
		ToPropertyID:    t.PropertyID,
		OldRent:         oldRent,
		NewRent:         t.RentAmount,
		Reason:          reason,
	}
	if t.UnitID != nil {
		e.ToUnitID = *t.UnitID
	}
	return e
}

// TenantStatusChangedEvent is raised whenever the business status changes
type TenantStatusChangedEvent struct {
	shared.BaseDomainEvent
	TenantID   uuid.UUID    `json:"tenant_id"`
	PropertyID uuid.UUID    `json:"property_id"`
	OldStatus  TenantStatus `json:"old_status"`
	NewStatus  TenantStatus `json:"new_status"`
	Reason     string       `json:"reason,omitempty"`
}

// NewTenantStatusChangedEvent creates a new TenantStatusChangedEvent
func NewTenantStatusChangedEvent(t *Tenant, old TenantStatus, reason string) *TenantStatusChangedEvent {
	return &TenantStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantStatusChanged, AggregateTypeTenant, t.ID, t.OrgID),
		TenantID:        t.ID,
		PropertyID:      t.PropertyID,
		OldStatus:       old,
		NewStatus:       t.Status,
		Reason:          reason,
	}
}

// TenantArchivedEvent is raised when a tenant is archived
type TenantArchivedEvent struct {
	shared.BaseDomainEvent
	TenantID   uuid.UUID  `json:"tenant_id"`
	PropertyID uuid.UUID  `json:"property_id"`
	UnitID     *uuid.UUID `json:"unit_id,omitempty"`
	Name       string     `json:"name"`
}

// NewTenantArchivedEvent creates a new TenantArchivedEvent
func NewTenantArchivedEvent(t *Tenant, lastUnit *uuid.UUID) *TenantArchivedEvent {
	return &TenantArchivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantArchived, AggregateTypeTenant, t.ID, t.OrgID),
		TenantID:        t.ID,
		PropertyID:      t.PropertyID,
		UnitID:          lastUnit,
		Name:            t.Name,
	}
}

// TenantRentChangedEvent is raised when a tenant's rent changes outside a transfer
type TenantRentChangedEvent struct {
	shared.BaseDomainEvent
	TenantID   uuid.UUID       `json:"tenant_id"`
	MovementID uuid.UUID       `json:"movement_id"`
	OldRent    decimal.Decimal `json:"old_rent"`
	NewRent    decimal.Decimal `json:"new_rent"`
}

// NewTenantRentChangedEvent creates a new TenantRentChangedEvent
func NewTenantRentChangedEvent(t *Tenant, movementID uuid.UUID, oldRent decimal.Decimal) *TenantRentChangedEvent {
	return &TenantRentChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantRentChanged, AggregateTypeTenant, t.ID, t.OrgID),
		TenantID:        t.ID,
		MovementID:      movementID,
		OldRent:         oldRent,
		NewRent:         t.RentAmount,
	}
}
