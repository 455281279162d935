package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/audit"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAuditRepository implements audit.Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append inserts an entry, ignoring a second entry for the same event
func (r *GormAuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(models.AuditLogModelFromDomain(e)).Error
}

// ListByEntity lists entries of one entity, newest first
func (r *GormAuditRepository) ListByEntity(ctx context.Context, orgID uuid.UUID, entityType string, entityID uuid.UUID, filter shared.Filter) ([]audit.Entry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AuditLogModel{}).
		Scopes(OrgScope(orgID)).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AuditLogModel
	if err := query.Scopes(Paginate(filter)).Order("occurred_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]audit.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, total, nil
}

var _ audit.Repository = (*GormAuditRepository)(nil)
