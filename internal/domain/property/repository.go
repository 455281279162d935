package property

import (
	"context"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PropertyRepository defines persistence for properties
type PropertyRepository interface {
	// FindByID finds a property by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	// FindByIDForOrg finds a property by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Property, error)
	// FindByIDForUpdate loads the property and locks its row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Property, error)
	// FindAllForOrg lists live properties of an organization
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Property, int64, error)
	// Save creates or updates a property
	Save(ctx context.Context, p *Property) error
}

// UnitCounts are the live and occupied unit counts of a property
type UnitCounts struct {
	Total    int
	Occupied int
}

// UnitRepository defines persistence for units
type UnitRepository interface {
	// FindByID finds a unit by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	// FindByIDForOrg finds a unit by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Unit, error)
	// FindByProperty lists all units of a property, live and archived, ordered by unit number
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]Unit, error)
	// FindByPropertyAndNumber finds a live unit by its number
	FindByPropertyAndNumber(ctx context.Context, propertyID uuid.UUID, unitNumber string) (*Unit, error)
	// Create inserts new units
	Create(ctx context.Context, units ...*Unit) error
	// Occupy persists an AssignTenant result with a single conditional write that only
	// succeeds while the stored row is still vacant in expectedStatus.
	// Returns shared.ErrUnitUnavailable when another writer got there first.
	Occupy(ctx context.Context, unit *Unit, expectedStatus UnitStatus) error
	// SaveWithLock persists the unit guarded by its previous version
	SaveWithLock(ctx context.Context, unit *Unit) error
	// Delete hard-deletes a unit that never held a tenant
	Delete(ctx context.Context, id uuid.UUID) error
	// CountForProperty counts live and occupied units
	CountForProperty(ctx context.Context, propertyID uuid.UUID) (UnitCounts, error)
}

// ExpenseRepository defines persistence for expenses
type ExpenseRepository interface {
	// FindByIDForOrg finds an expense by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Expense, error)
	// Save creates or updates an expense
	Save(ctx context.Context, e *Expense) error
	// SumActiveByProperty totals ACTIVE expenses of a property
	SumActiveByProperty(ctx context.Context, propertyID uuid.UUID) (decimal.Decimal, int64, error)
}

// MaintenanceRepository defines persistence for maintenance requests
type MaintenanceRepository interface {
	// FindByIDForOrg finds a request by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*MaintenanceRequest, error)
	// FindOpenByUnit lists non-terminal requests of a unit
	FindOpenByUnit(ctx context.Context, unitID uuid.UUID) ([]MaintenanceRequest, error)
	// Save creates or updates a request
	Save(ctx context.Context, m *MaintenanceRequest) error
}
