package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/notification"
)

// NotificationModel is the persistence model for in-app notifications.
// One notification per (event, kind, recipient).
type NotificationModel struct {
	ID            uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	OrgID         uuid.UUID                  `gorm:"type:uuid;not null;index:idx_notifications_recipient,priority:1"`
	EventID       uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex:uq_notifications_delivery,priority:1"`
	Kind          notification.Kind          `gorm:"type:varchar(50);not null;uniqueIndex:uq_notifications_delivery,priority:2"`
	RecipientType notification.RecipientType `gorm:"type:varchar(20);not null"`
	RecipientID   uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex:uq_notifications_delivery,priority:3;index:idx_notifications_recipient,priority:2"`
	Title         string                     `gorm:"type:varchar(200);not null"`
	Body          string                     `gorm:"type:text"`
	ReadAt        *time.Time
	CreatedAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		ID:            m.ID,
		OrgID:         m.OrgID,
		EventID:       m.EventID,
		Kind:          m.Kind,
		RecipientType: m.RecipientType,
		RecipientID:   m.RecipientID,
		Title:         m.Title,
		Body:          m.Body,
		ReadAt:        m.ReadAt,
		CreatedAt:     m.CreatedAt,
	}
}

// NotificationModelFromDomain creates a persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:            n.ID,
		OrgID:         n.OrgID,
		EventID:       n.EventID,
		Kind:          n.Kind,
		RecipientType: n.RecipientType,
		RecipientID:   n.RecipientID,
		Title:         n.Title,
		Body:          n.Body,
		ReadAt:        n.ReadAt,
		CreatedAt:     n.CreatedAt,
	}
}
