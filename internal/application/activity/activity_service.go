// Package activity serves the read side of the fan-out: the audit trail of an
// entity and the in-app notifications of a recipient.
package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/audit"
	"github.com/propcore/backend/internal/domain/notification"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

var auditableTypes = map[string]bool{
	property.AggregateTypeProperty:    true,
	property.AggregateTypeUnit:        true,
	property.AggregateTypeExpense:     true,
	property.AggregateTypeMaintenance: true,
	tenancy.AggregateTypeTenant:       true,
	payment.AggregateTypePayment:      true,
	payment.AggregateTypeBatch:        true,
}

// AuditEntryResponse is one audit record
type AuditEntryResponse struct {
	ID         uuid.UUID       `json:"id"`
	EventID    uuid.UUID       `json:"event_id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NotificationResponse is one in-app notification
type NotificationResponse struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	Kind          string     `json:"kind"`
	RecipientType string     `json:"recipient_type"`
	RecipientID   uuid.UUID  `json:"recipient_id"`
	Title         string     `json:"title"`
	Body          string     `json:"body,omitempty"`
	Read          bool       `json:"read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Service answers audit and notification queries
type Service struct {
	audit         audit.Repository
	notifications notification.Repository
	logger        *zap.Logger
}

// NewService creates a new activity Service
func NewService(auditRepo audit.Repository, notifications notification.Repository, logger *zap.Logger) *Service {
	return &Service{
		audit:         auditRepo,
		notifications: notifications,
		logger:        logger,
	}
}

// AuditLog lists the audit trail of one entity, newest first
func (s *Service) AuditLog(ctx context.Context, orgID uuid.UUID, entityType string, entityID uuid.UUID, filter shared.Filter) (shared.Paginated[AuditEntryResponse], error) {
	if !auditableTypes[entityType] {
		return shared.Paginated[AuditEntryResponse]{}, shared.NewValidationError("entity_type", "unknown entity type: "+entityType)
	}
	filter = filter.Normalize()
	entries, total, err := s.audit.ListByEntity(ctx, orgID, entityType, entityID, filter)
	if err != nil {
		return shared.Paginated[AuditEntryResponse]{}, err
	}
	items := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = AuditEntryResponse{
			ID:         e.ID,
			EventID:    e.EventID,
			EventType:  e.EventType,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			ActorID:    e.ActorID,
			Payload:    e.Payload,
			OccurredAt: e.OccurredAt,
		}
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Notifications lists the notifications of a tenant or staff user, newest first
func (s *Service) Notifications(ctx context.Context, orgID, recipientID uuid.UUID, filter shared.Filter) (shared.Paginated[NotificationResponse], error) {
	filter = filter.Normalize()
	list, total, err := s.notifications.ListByRecipient(ctx, orgID, recipientID, filter)
	if err != nil {
		return shared.Paginated[NotificationResponse]{}, err
	}
	items := make([]NotificationResponse, len(list))
	for i, n := range list {
		items[i] = NotificationResponse{
			ID:            n.ID,
			EventID:       n.EventID,
			Kind:          string(n.Kind),
			RecipientType: string(n.RecipientType),
			RecipientID:   n.RecipientID,
			Title:         n.Title,
			Body:          n.Body,
			Read:          n.ReadAt != nil,
			ReadAt:        n.ReadAt,
			CreatedAt:     n.CreatedAt,
		}
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// MarkNotificationRead flags a notification as read
func (s *Service) MarkNotificationRead(ctx context.Context, orgID, id uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, orgID, id, shared.Now()); err != nil {
		return err
	}
	s.logger.Debug("notification read", zap.String("notification_id", id.String()))
	return nil
}
