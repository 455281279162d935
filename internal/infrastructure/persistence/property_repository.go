package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "property")
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a property by ID within an organization
func (r *GormPropertyRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*property.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "property")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the property with SELECT ... FOR UPDATE
func (r *GormPropertyRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "property")
	}
	return model.ToDomain(), nil
}

// FindAllForOrg lists live properties of an organization, newest first unless
// the filter names another order
func (r *GormPropertyRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]property.Property, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PropertyModel{}).
		Scopes(OrgScope(orgID)).
		Where("lifecycle = ?", shared.LifecycleLive)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PropertyModel
	if err := query.Scopes(Paginate(filter), SortBy(filter, PropertySortFields, "created_at")).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	properties := make([]property.Property, len(rows))
	for i := range rows {
		properties[i] = *rows[i].ToDomain()
	}
	return properties, total, nil
}

// Save inserts a new property or updates a stored one guarded by its version
func (r *GormPropertyRepository) Save(ctx context.Context, p *property.Property) error {
	if p.StoredVersion() == 0 {
		if err := r.db.WithContext(ctx).Create(models.PropertyModelFromDomain(p)).Error; err != nil {
			return err
		}
		p.MarkStored()
		return nil
	}
	next := p.NextVersion()
	model := models.PropertyModelFromDomain(p)
	model.Version = next
	if err := saveGuarded(ctx, r.db, model, p.StoredVersion()); err != nil {
		return err
	}
	p.Version = next
	p.MarkStored()
	return nil
}

// GormUnitRepository implements UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID finds a unit by its ID
func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "unit")
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a unit by ID within an organization
func (r *GormUnitRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*property.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "unit")
	}
	return model.ToDomain(), nil
}

// FindByProperty lists all units of a property ordered by unit number
func (r *GormUnitRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]property.Unit, error) {
	var rows []models.UnitModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("unit_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	units := make([]property.Unit, len(rows))
	for i := range rows {
		units[i] = *rows[i].ToDomain()
	}
	return units, nil
}

// FindByPropertyAndNumber finds a live unit by its number
func (r *GormUnitRepository) FindByPropertyAndNumber(ctx context.Context, propertyID uuid.UUID, unitNumber string) (*property.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND unit_number = ? AND lifecycle = ?", propertyID, unitNumber, shared.LifecycleLive).
		First(&model).Error; err != nil {
		return nil, notFound(err, "unit")
	}
	return model.ToDomain(), nil
}

// Create inserts new units in one statement
func (r *GormUnitRepository) Create(ctx context.Context, units ...*property.Unit) error {
	if len(units) == 0 {
		return nil
	}
	rows := make([]*models.UnitModel, len(units))
	for i, u := range units {
		rows[i] = models.UnitModelFromDomain(u)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError(shared.CodeConsistency, "unit number already exists in this property").
				WithField("unit_number").WithCause(err)
		}
		return err
	}
	for _, u := range units {
		u.MarkStored()
	}
	return nil
}

// Occupy writes the occupied unit with a single conditional UPDATE. The row must still
// hold the version we read, have no tenant and sit in expectedStatus.
func (r *GormUnitRepository) Occupy(ctx context.Context, unit *property.Unit, expectedStatus property.UnitStatus) error {
	if unit.TenantID == nil {
		return shared.NewDomainError(shared.CodeConsistency, "occupy requires an assigned tenant")
	}
	next := unit.NextVersion()
	result := r.db.WithContext(ctx).
		Model(&models.UnitModel{}).
		Where("id = ? AND version = ? AND tenant_id IS NULL AND status = ?", unit.ID, unit.StoredVersion(), expectedStatus).
		Updates(map[string]any{
			"status":      unit.Status,
			"tenant_id":   unit.TenantID,
			"rent_amount": unit.RentAmount,
			"history":     models.NewJSONColumn(unit.History),
			"version":     next,
			"updated_at":  unit.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrUnitUnavailable.WithField("unit_id")
	}
	unit.Version = next
	unit.MarkStored()
	return nil
}

// SaveWithLock persists the unit guarded by its stored version
func (r *GormUnitRepository) SaveWithLock(ctx context.Context, unit *property.Unit) error {
	next := unit.NextVersion()
	model := models.UnitModelFromDomain(unit)
	model.Version = next
	if err := saveGuarded(ctx, r.db, model, unit.StoredVersion()); err != nil {
		if isDuplicateKey(err) {
			return shared.NewDomainError(shared.CodeConsistency, "unit number already exists in this property").
				WithField("unit_number").WithCause(err)
		}
		return err
	}
	unit.Version = next
	unit.MarkStored()
	return nil
}

// Delete hard-deletes a unit
func (r *GormUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.UnitModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("unit")
	}
	return nil
}

// CountForProperty counts the live and occupied units of a property
func (r *GormUnitRepository) CountForProperty(ctx context.Context, propertyID uuid.UUID) (property.UnitCounts, error) {
	var row struct {
		Total    int
		Occupied int
	}
	err := r.db.WithContext(ctx).
		Model(&models.UnitModel{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? AND tenant_id IS NOT NULL THEN 1 ELSE 0 END), 0) AS occupied",
			property.UnitStatusOccupied).
		Where("property_id = ? AND lifecycle = ?", propertyID, shared.LifecycleLive).
		Scan(&row).Error
	if err != nil {
		return property.UnitCounts{}, err
	}
	return property.UnitCounts{Total: row.Total, Occupied: row.Occupied}, nil
}

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByIDForOrg finds an expense by ID within an organization
func (r *GormExpenseRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*property.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "expense")
	}
	return model.ToDomain(), nil
}

// Save inserts or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, e *property.Expense) error {
	if e.StoredVersion() == 0 {
		if err := r.db.WithContext(ctx).Create(models.ExpenseModelFromDomain(e)).Error; err != nil {
			return err
		}
		e.MarkStored()
		return nil
	}
	next := e.NextVersion()
	model := models.ExpenseModelFromDomain(e)
	model.Version = next
	if err := saveGuarded(ctx, r.db, model, e.StoredVersion()); err != nil {
		return err
	}
	e.Version = next
	e.MarkStored()
	return nil
}

// SumActiveByProperty totals ACTIVE expenses of a property
func (r *GormExpenseRepository) SumActiveByProperty(ctx context.Context, propertyID uuid.UUID) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("property_id = ? AND status = ?", propertyID, property.ExpenseStatusActive).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Total, row.Count, nil
}

// GormMaintenanceRepository implements MaintenanceRepository using GORM
type GormMaintenanceRepository struct {
	db *gorm.DB
}

// NewGormMaintenanceRepository creates a new GormMaintenanceRepository
func NewGormMaintenanceRepository(db *gorm.DB) *GormMaintenanceRepository {
	return &GormMaintenanceRepository{db: db}
}

// FindByIDForOrg finds a maintenance request by ID within an organization
func (r *GormMaintenanceRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*property.MaintenanceRequest, error) {
	var model models.MaintenanceRequestModel
	if err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "maintenance request")
	}
	return model.ToDomain(), nil
}

// FindOpenByUnit lists the non-terminal requests of a unit, oldest first
func (r *GormMaintenanceRepository) FindOpenByUnit(ctx context.Context, unitID uuid.UUID) ([]property.MaintenanceRequest, error) {
	var rows []models.MaintenanceRequestModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ? AND status IN ?", unitID,
			[]property.MaintenanceStatus{property.MaintenanceStatusOpen, property.MaintenanceStatusInProgress}).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	requests := make([]property.MaintenanceRequest, len(rows))
	for i := range rows {
		requests[i] = *rows[i].ToDomain()
	}
	return requests, nil
}

// Save inserts or updates a maintenance request
func (r *GormMaintenanceRepository) Save(ctx context.Context, m *property.MaintenanceRequest) error {
	if m.StoredVersion() == 0 {
		if err := r.db.WithContext(ctx).Create(models.MaintenanceRequestModelFromDomain(m)).Error; err != nil {
			return err
		}
		m.MarkStored()
		return nil
	}
	next := m.NextVersion()
	model := models.MaintenanceRequestModelFromDomain(m)
	model.Version = next
	if err := saveGuarded(ctx, r.db, model, m.StoredVersion()); err != nil {
		return err
	}
	m.Version = next
	m.MarkStored()
	return nil
}

var (
	_ property.PropertyRepository    = (*GormPropertyRepository)(nil)
	_ property.UnitRepository        = (*GormUnitRepository)(nil)
	_ property.ExpenseRepository     = (*GormExpenseRepository)(nil)
	_ property.MaintenanceRepository = (*GormMaintenanceRepository)(nil)
)
