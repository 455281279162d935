package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/application/chain"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const reminderSweepLimit = 500

// RentDueNotifier delivers the rent-due notification of a sent reminder
type RentDueNotifier interface {
	RentDue(ctx context.Context, r *payment.Reminder) error
}

// ReminderService advances due rent reminders. Each due reminder is marked sent
// and replaced by next month's occurrence while its tenant still holds a unit.
type ReminderService struct {
	runner    *chain.Runner
	reminders payment.ReminderRepository
	notifier  RentDueNotifier
	logger    *zap.Logger
}

// NewReminderService creates a new ReminderService
func NewReminderService(
	runner *chain.Runner,
	reminders payment.ReminderRepository,
	notifier RentDueNotifier,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		runner:    runner,
		reminders: reminders,
		notifier:  notifier,
		logger:    logger,
	}
}

// Sweep processes the reminders due now, each in its own transaction.
// Notification failures are logged; the reminder stays sent.
func (s *ReminderService) Sweep(ctx context.Context) (ReminderSweepResult, error) {
	var result ReminderSweepResult
	due, err := s.reminders.FindDue(ctx, shared.Now(), reminderSweepLimit)
	if err != nil {
		return result, err
	}
	result.Due = len(due)

	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sent := false
		err := s.runner.Run(ctx, "reminder.sent", uuid.Nil,
			chain.Do("advance_reminder", func(ctx context.Context, tx *chain.Tx) error {
				t, err := tx.Tenants().FindByID(ctx, r.TenantID)
				if err != nil {
					return err
				}
				if !t.HoldsUnit() {
					if err := r.Cancel("tenant no longer holds a unit", tx.Now); err != nil {
						return err
					}
					return tx.Reminders().Save(ctx, r)
				}
				if err := r.MarkSent(tx.Now); err != nil {
					return err
				}
				if err := tx.Reminders().Save(ctx, r); err != nil {
					return err
				}
				sent = true
				return tx.Reminders().Create(ctx, r.Successor(t.EffectiveRent(tx.Now)))
			}),
		)
		if err != nil {
			result.Failed++
			s.logger.Warn("reminder sweep failed",
				zap.String("reminder_id", r.ID.String()),
				zap.String("tenant_id", r.TenantID.String()),
				zap.Error(err),
			)
			continue
		}
		if !sent {
			result.Cancelled++
			continue
		}
		result.Sent++
		if s.notifier != nil {
			if err := s.notifier.RentDue(ctx, r); err != nil {
				s.logger.Warn("rent due notification failed",
					zap.String("reminder_id", r.ID.String()),
					zap.Error(err),
				)
			}
		}
	}

	if result.Due > 0 {
		s.logger.Info("reminder sweep completed",
			zap.Int("due", result.Due),
			zap.Int("sent", result.Sent),
			zap.Int("cancelled", result.Cancelled),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}
