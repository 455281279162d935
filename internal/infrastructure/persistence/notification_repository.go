package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/notification"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification unless one already exists for the same event, kind and recipient
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "kind"}, {Name: "recipient_id"}},
			DoNothing: true,
		}).
		Create(models.NotificationModelFromDomain(n))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByRecipient lists a recipient's notifications, newest first
func (r *GormNotificationRepository) ListByRecipient(ctx context.Context, orgID, recipientID uuid.UUID, filter shared.Filter) ([]notification.Notification, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Scopes(OrgScope(orgID)).
		Where("recipient_id = ?", recipientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.NotificationModel
	if err := query.Scopes(Paginate(filter)).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	items := make([]notification.Notification, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// MarkRead flags a notification as read. Reading twice keeps the first timestamp.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, orgID, id uuid.UUID, at time.Time) error {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return notFound(err, "notification")
	}
	if model.ReadAt != nil {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ?", id).
		Update("read_at", at.UTC()).Error
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
