package property

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaintenancePriority ranks maintenance requests
type MaintenancePriority string

const (
	MaintenancePriorityLow       MaintenancePriority = "LOW"
	MaintenancePriorityMedium    MaintenancePriority = "MEDIUM"
	MaintenancePriorityHigh      MaintenancePriority = "HIGH"
	MaintenancePriorityEmergency MaintenancePriority = "EMERGENCY"
)

// IsValid checks if the priority is valid
func (p MaintenancePriority) IsValid() bool {
	switch p {
	case MaintenancePriorityLow, MaintenancePriorityMedium, MaintenancePriorityHigh, MaintenancePriorityEmergency:
		return true
	}
	return false
}

// MaintenanceStatus represents the status of a maintenance request
type MaintenanceStatus string

const (
	MaintenanceStatusOpen       MaintenanceStatus = "OPEN"
	MaintenanceStatusInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceStatusCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceStatusCancelled  MaintenanceStatus = "CANCELLED"
)

// IsTerminal returns true if no further changes are allowed
func (s MaintenanceStatus) IsTerminal() bool {
	return s == MaintenanceStatusCompleted || s == MaintenanceStatusCancelled
}

// MaintenanceRequest is a repair or upkeep job on a unit
type MaintenanceRequest struct {
	shared.OrgAggregateRoot
	PropertyID      uuid.UUID
	UnitID          uuid.UUID
	TenantID        *uuid.UUID
	Title           string
	Description     string
	Priority        MaintenancePriority
	Status          MaintenanceStatus
	BlocksOccupancy bool
	// UnitBlocked is set when creating the request moved the unit into MAINTENANCE
	UnitBlocked   bool
	EstimatedCost decimal.Decimal
	ActualCost    decimal.Decimal
	CompletedAt   *time.Time
}

// NewMaintenanceRequest creates an open maintenance request
func NewMaintenanceRequest(orgID, propertyID, unitID uuid.UUID, title, description string, priority MaintenancePriority, blocksOccupancy bool, estimated decimal.Decimal) (*MaintenanceRequest, error) {
	title = strings.TrimSpace(title)
	if propertyID == uuid.Nil {
		return nil, shared.NewValidationError("property_id", "property is required")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewValidationError("unit_id", "unit is required")
	}
	if title == "" {
		return nil, shared.NewValidationError("title", "title cannot be empty")
	}
	if priority == "" {
		priority = MaintenancePriorityMedium
	}
	if !priority.IsValid() {
		return nil, shared.NewValidationError("priority", "invalid priority")
	}
	if estimated.IsNegative() {
		return nil, shared.NewValidationError("estimated_cost", "estimated cost cannot be negative")
	}
	return &MaintenanceRequest{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		PropertyID:       propertyID,
		UnitID:           unitID,
		Title:            title,
		Description:      strings.TrimSpace(description),
		Priority:         priority,
		Status:           MaintenanceStatusOpen,
		BlocksOccupancy:  blocksOccupancy,
		EstimatedCost:    estimated,
		ActualCost:       decimal.Zero,
	}, nil
}

// Start moves the request into progress
func (m *MaintenanceRequest) Start() error {
	if m.Status != MaintenanceStatusOpen {
		return shared.NewDomainError(shared.CodeInvalidState, "only open requests can be started")
	}
	m.Status = MaintenanceStatusInProgress
	m.Touch()
	m.IncrementVersion()
	return nil
}

// Complete closes the request with its actual cost
func (m *MaintenanceRequest) Complete(actualCost decimal.Decimal, at time.Time) error {
	if m.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState, "maintenance request is already closed")
	}
	if actualCost.IsNegative() {
		return shared.NewValidationError("actual_cost", "actual cost cannot be negative")
	}
	m.Status = MaintenanceStatusCompleted
	m.ActualCost = actualCost
	m.CompletedAt = &at
	m.Touch()
	m.IncrementVersion()
	m.AddDomainEvent(NewMaintenanceCompletedEvent(m))
	return nil
}

// Cancel closes the request without cost
func (m *MaintenanceRequest) Cancel() error {
	if m.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState, "maintenance request is already closed")
	}
	m.Status = MaintenanceStatusCancelled
	m.Touch()
	m.IncrementVersion()
	return nil
}
