package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormHistoryRepository implements history.Repository using GORM. Both tables are append-only.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// AppendUnitHistory inserts unit history records
func (r *GormHistoryRepository) AppendUnitHistory(ctx context.Context, records ...*history.UnitHistory) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]*models.UnitHistoryModel, len(records))
	for i, h := range records {
		rows[i] = models.UnitHistoryModelFromDomain(h)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// AppendMovements inserts tenant movement records
func (r *GormHistoryRepository) AppendMovements(ctx context.Context, records ...*history.TenantMovement) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]*models.TenantMovementModel, len(records))
	for i, m := range records {
		rows[i] = models.TenantMovementModelFromDomain(m)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListUnitHistory returns a unit's history, newest first
func (r *GormHistoryRepository) ListUnitHistory(ctx context.Context, orgID, unitID uuid.UUID, filter shared.Filter) ([]history.UnitHistory, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.UnitHistoryModel{}).
		Scopes(OrgScope(orgID)).
		Where("unit_id = ?", unitID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.UnitHistoryModel
	if err := query.Scopes(Paginate(filter)).Order("occurred_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	records := make([]history.UnitHistory, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, total, nil
}

// ListMovements returns a tenant's movements, newest first
func (r *GormHistoryRepository) ListMovements(ctx context.Context, orgID, tenantID uuid.UUID, filter shared.Filter) ([]history.TenantMovement, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TenantMovementModel{}).
		Scopes(OrgScope(orgID)).
		Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TenantMovementModel
	if err := query.Scopes(Paginate(filter)).
		Order("effective_date DESC").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	records := make([]history.TenantMovement, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, total, nil
}

var _ history.Repository = (*GormHistoryRepository)(nil)
