package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReminderStatus represents the status of a rent reminder
type ReminderStatus string

const (
	ReminderStatusActive    ReminderStatus = "ACTIVE"
	ReminderStatusSent      ReminderStatus = "SENT"
	ReminderStatusCancelled ReminderStatus = "CANCELLED"
)

// Reminder is a single monthly rent reminder. Each occurrence is its own record;
// when one is sent or cancelled by a payment, the next month's occurrence replaces it.
type Reminder struct {
	shared.OrgAggregateRoot
	TenantID        uuid.UUID
	PropertyID      uuid.UUID
	Amount          decimal.Decimal
	RentMonth       RentMonth
	NextRunDate     time.Time
	Status          ReminderStatus
	SentAt          *time.Time
	CancelledAt     *time.Time
	CancelledReason string
}

// FirstOfNextMonth returns midnight UTC on the first day of the month after t
func FirstOfNextMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

// NewRentReminder creates the reminder for the first rent month starting after from
func NewRentReminder(orgID, tenantID, propertyID uuid.UUID, amount decimal.Decimal, from time.Time) *Reminder {
	next := FirstOfNextMonth(from)
	return &Reminder{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		TenantID:         tenantID,
		PropertyID:       propertyID,
		Amount:           amount,
		RentMonth:        RentMonthOf(next),
		NextRunDate:      next,
		Status:           ReminderStatusActive,
	}
}

// Successor returns the next month's occurrence of this reminder
func (r *Reminder) Successor(amount decimal.Decimal) *Reminder {
	return NewRentReminder(r.OrgID, r.TenantID, r.PropertyID, amount, r.NextRunDate)
}

// IsDue reports whether the reminder should run at now
func (r *Reminder) IsDue(now time.Time) bool {
	return r.Status == ReminderStatusActive && !r.NextRunDate.After(now)
}

// MarkSent records that the reminder notification went out
func (r *Reminder) MarkSent(at time.Time) error {
	if r.Status != ReminderStatusActive {
		return shared.ErrInvalidState
	}
	r.Status = ReminderStatusSent
	r.SentAt = &at
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Cancel stops the reminder
func (r *Reminder) Cancel(reason string, at time.Time) error {
	if r.Status != ReminderStatusActive {
		return shared.ErrInvalidState
	}
	r.Status = ReminderStatusCancelled
	r.CancelledAt = &at
	r.CancelledReason = reason
	r.Touch()
	r.IncrementVersion()
	return nil
}
