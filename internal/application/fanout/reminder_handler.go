package fanout

import (
	"context"
	"fmt"

	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

// ReminderCreateHandler schedules the first monthly rent reminder of a new tenant
type ReminderCreateHandler struct {
	tenants   tenancy.TenantRepository
	reminders payment.ReminderRepository
	logger    *zap.Logger
}

// NewReminderCreateHandler creates a new ReminderCreateHandler
func NewReminderCreateHandler(tenants tenancy.TenantRepository, reminders payment.ReminderRepository, logger *zap.Logger) *ReminderCreateHandler {
	return &ReminderCreateHandler{
		tenants:   tenants,
		reminders: reminders,
		logger:    logger,
	}
}

// Task returns the fan-out task this handler performs
func (h *ReminderCreateHandler) Task() string {
	return shared.TaskReminderCreate
}

// Handle creates a reminder due on the first of the month after the later of
// lease start and now. A tenant that already has an active reminder, or no
// longer holds a unit, gets none.
func (h *ReminderCreateHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	added, ok := event.(*tenancy.TenantAddedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			tenancy.EventTypeTenantAdded, event.EventType())
	}

	t, err := h.tenants.FindByID(ctx, added.TenantID)
	if err != nil {
		return fmt.Errorf("failed to load tenant: %w", err)
	}
	if !t.HoldsUnit() {
		return nil
	}
	active, err := h.reminders.ExistsActive(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("failed to check reminders: %w", err)
	}
	if active {
		return nil
	}

	now := shared.Now()
	from := t.LeaseStartDate
	if now.After(from) {
		from = now
	}
	r := payment.NewRentReminder(t.OrgID, t.ID, t.PropertyID, t.EffectiveRent(now), from)
	if err := h.reminders.Create(ctx, r); err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	h.logger.Info("rent reminder scheduled",
		zap.String("tenant_id", t.ID.String()),
		zap.Time("next_run_date", r.NextRunDate),
	)
	return nil
}
