package fanout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/notification"
	"github.com/propcore/backend/internal/domain/payment"
	"go.uber.org/zap"
)

// Notifier stores in-app notifications and pushes each new one to the publisher
type Notifier struct {
	notifications notification.Repository
	publisher     notification.Publisher
	logger        *zap.Logger
}

// NewNotifier creates a new Notifier. A nil publisher only stores.
func NewNotifier(notifications notification.Repository, publisher notification.Publisher, logger *zap.Logger) *Notifier {
	return &Notifier{
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// Send stores msg and publishes it. A notification already stored for the same
// event, kind and recipient is neither stored nor published again.
func (n *Notifier) Send(ctx context.Context, msg *notification.Notification) error {
	created, err := n.notifications.Create(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	if !created {
		n.logger.Debug("notification already sent",
			zap.String("event_id", msg.EventID.String()),
			zap.String("kind", string(msg.Kind)),
		)
		return nil
	}
	if n.publisher == nil {
		return nil
	}
	// Publish failures leave the stored copy in place.
	if err := n.publisher.Publish(ctx, msg); err != nil {
		n.logger.Warn("failed to publish notification",
			zap.String("notification_id", msg.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// RentDue notifies the tenant of a sent rent reminder
func (n *Notifier) RentDue(ctx context.Context, r *payment.Reminder) error {
	// The reminder ID stands in for the event ID.
	return n.Send(ctx, notification.New(r.OrgID, r.ID, notification.KindRentDue,
		notification.RecipientTenant, r.TenantID,
		"Rent due",
		fmt.Sprintf("Rent of %s for %s is due.", r.Amount.StringFixed(2), r.RentMonth),
	))
}

// recipientOrActor returns id, or the acting user when id is nil
func recipientOrActor(id *uuid.UUID, actor uuid.UUID) (notification.RecipientType, uuid.UUID) {
	if id != nil && *id != uuid.Nil {
		return notification.RecipientTenant, *id
	}
	return notification.RecipientUser, actor
}
