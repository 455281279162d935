package tenancy

import (
	"context"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
)

// TenantFilter narrows tenant listings
type TenantFilter struct {
	shared.Filter
	PropertyID      *uuid.UUID
	Statuses        []TenantStatus
	IncludeArchived bool
}

// TenantRepository defines persistence for tenants
type TenantRepository interface {
	// FindByID finds a tenant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	// FindByIDForOrg finds a tenant by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Tenant, error)
	// FindLiveByEmail finds the live tenant with email in an organization
	FindLiveByEmail(ctx context.Context, orgID uuid.UUID, email string) (*Tenant, error)
	// FindAllForOrg lists tenants of an organization
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter TenantFilter) ([]Tenant, int64, error)
	// FindLiveByStatuses pages through live tenants in the given statuses across organizations
	FindLiveByStatuses(ctx context.Context, statuses []TenantStatus, limit, offset int) ([]Tenant, error)
	// CountLiveByProperty counts live tenants still holding a unit in the property
	CountLiveByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error)
	// Create inserts a tenant. A live tenant already holding the same unit or email
	// in the property yields shared.ErrDuplicateTenant.
	Create(ctx context.Context, t *Tenant) error
	// SaveWithLock persists the tenant guarded by its previous version
	SaveWithLock(ctx context.Context, t *Tenant) error
}
