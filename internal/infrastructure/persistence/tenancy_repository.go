package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"github.com/propcore/backend/internal/infrastructure/persistence/models"
	"github.com/propcore/backend/internal/infrastructure/persistence/sqlerr"
	"gorm.io/gorm"
)

var (
	tenantUnitIndex = sqlerr.UniqueIndex{
		Name: "uq_tenants_property_unit", Table: "tenants", Columns: []string{"property_id", "unit_id"},
	}
	tenantEmailIndex = sqlerr.UniqueIndex{
		Name: "uq_tenants_property_email", Table: "tenants", Columns: []string{"property_id", "email"},
	}
)

// tenantConflict maps a unique violation on the tenants table to the domain
// error of the index that raised it
func tenantConflict(err error) error {
	switch {
	case tenantUnitIndex.ViolatedBy(err):
		return shared.ErrUnitUnavailable.WithField("unit_id").WithCause(err)
	case tenantEmailIndex.ViolatedBy(err), isDuplicateKey(err):
		return shared.ErrDuplicateTenant.WithField("email").WithCause(err)
	}
	return err
}

// GormTenantRepository implements TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenancy.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "tenant")
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a tenant by ID within an organization
func (r *GormTenantRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*tenancy.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "tenant")
	}
	return model.ToDomain(), nil
}

// FindLiveByEmail finds the live tenant with email in an organization
func (r *GormTenantRepository) FindLiveByEmail(ctx context.Context, orgID uuid.UUID, email string) (*tenancy.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("email = ? AND lifecycle = ?", strings.ToLower(strings.TrimSpace(email)), shared.LifecycleLive).
		First(&model).Error; err != nil {
		return nil, notFound(err, "tenant")
	}
	return model.ToDomain(), nil
}

// FindAllForOrg lists tenants of an organization, newest first unless the
// filter names another order
func (r *GormTenantRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter tenancy.TenantFilter) ([]tenancy.Tenant, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TenantModel{}).Scopes(OrgScope(orgID))
	if !filter.IncludeArchived {
		query = query.Where("lifecycle = ?", shared.LifecycleLive)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TenantModel
	if err := query.Scopes(Paginate(filter.Filter), SortBy(filter.Filter, TenantSortFields, "created_at")).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	tenants := make([]tenancy.Tenant, len(rows))
	for i := range rows {
		tenants[i] = *rows[i].ToDomain()
	}
	return tenants, total, nil
}

// FindLiveByStatuses pages through live tenants in the given statuses across organizations
func (r *GormTenantRepository) FindLiveByStatuses(ctx context.Context, statuses []tenancy.TenantStatus, limit, offset int) ([]tenancy.Tenant, error) {
	var rows []models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("lifecycle = ? AND status IN ?", shared.LifecycleLive, statuses).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	tenants := make([]tenancy.Tenant, len(rows))
	for i := range rows {
		tenants[i] = *rows[i].ToDomain()
	}
	return tenants, nil
}

// CountLiveByProperty counts live tenants still holding a unit in the property
func (r *GormTenantRepository) CountLiveByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Where("property_id = ? AND lifecycle = ? AND unit_id IS NOT NULL", propertyID, shared.LifecycleLive).
		Count(&count).Error
	return count, err
}

// Create inserts a tenant
func (r *GormTenantRepository) Create(ctx context.Context, t *tenancy.Tenant) error {
	if err := r.db.WithContext(ctx).Create(models.TenantModelFromDomain(t)).Error; err != nil {
		return tenantConflict(err)
	}
	t.MarkStored()
	return nil
}

// SaveWithLock persists the tenant guarded by its stored version
func (r *GormTenantRepository) SaveWithLock(ctx context.Context, t *tenancy.Tenant) error {
	next := t.NextVersion()
	model := models.TenantModelFromDomain(t)
	model.Version = next
	if err := saveGuarded(ctx, r.db, model, t.StoredVersion()); err != nil {
		return tenantConflict(err)
	}
	t.Version = next
	t.MarkStored()
	return nil
}

var _ tenancy.TenantRepository = (*GormTenantRepository)(nil)
