package fanout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/notification"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

// NotificationHandler turns events into in-app notifications:
// payment received and welcome messages for tenants, property and maintenance
// notices for staff. Events without a template are ignored.
type NotificationHandler struct {
	notifier *Notifier
	logger   *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifier *Notifier, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// Task returns the fan-out task this handler performs
func (h *NotificationHandler) Task() string {
	return shared.TaskNotification
}

// Handle builds and sends the notification for event
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	msg := h.build(event)
	if msg == nil {
		return nil
	}
	if msg.RecipientID == uuid.Nil {
		h.logger.Debug("notification has no recipient",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
		)
		return nil
	}
	return h.notifier.Send(ctx, msg)
}

func (h *NotificationHandler) build(event shared.DomainEvent) *notification.Notification {
	switch e := event.(type) {
	case *payment.PaymentRecordedEvent:
		return notification.New(e.OrgID(), e.EventID(), notification.KindPaymentReceived,
			notification.RecipientTenant, e.TenantID,
			"Payment received",
			fmt.Sprintf("We received %s for %s. Thank you.", e.Amount.StringFixed(2), e.RentMonth),
		)
	case *tenancy.TenantAddedEvent:
		return notification.New(e.OrgID(), e.EventID(), notification.KindWelcome,
			notification.RecipientTenant, e.TenantID,
			"Welcome home",
			fmt.Sprintf("Welcome %s. Unit %s is ready for you; monthly rent is %s.",
				e.Name, e.UnitNumber, e.RentAmount.StringFixed(2)),
		)
	case *property.PropertyAddedEvent:
		return notification.New(e.OrgID(), e.EventID(), notification.KindPropertyCreated,
			notification.RecipientUser, e.OwnerID,
			"Property created",
			fmt.Sprintf("%s was created with %d units.", e.Name, e.NumberOfUnits),
		)
	case *property.MaintenanceCreatedEvent:
		rtype, rid := recipientOrActor(e.TenantID, e.ActorID())
		return notification.New(e.OrgID(), e.EventID(), notification.KindMaintenanceCreated,
			rtype, rid,
			"Maintenance scheduled",
			fmt.Sprintf("Maintenance request %q (%s priority) was opened.", e.Title, e.Priority),
		)
	}
	return nil
}
