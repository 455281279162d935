package chain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/property"
)

// RecomputeTenantStatus sets the tenant Active when a PAID payment falls within the
// late window of now, Late otherwise, and refreshes its last payment date.
func RecomputeTenantStatus(tenantID uuid.UUID) Step {
	return Step{
		Name: "recompute_tenant_status",
		Run: func(ctx context.Context, tx *Tx) error {
			t, err := tx.Tenants().FindByID(ctx, tenantID)
			if err != nil {
				return err
			}
			lastPaid, err := tx.Payments().LastPaidDate(ctx, tenantID)
			if err != nil {
				return err
			}
			recent := lastPaid != nil && tx.Now.Sub(*lastPaid) <= tx.LateWindow

			prevPaid := t.LastPaymentDate
			cleared := t.ClearExpiredDiscount(tx.Now)
			changed := t.RecomputePaymentStatus(recent, lastPaid)
			if !changed && !cleared && samePaymentDate(prevPaid, t.LastPaymentDate) {
				return nil
			}
			if err := tx.Tenants().SaveWithLock(ctx, t); err != nil {
				return err
			}
			return tx.Emit(ctx, t)
		},
	}
}

// CancelDueReminders cancels the tenant's active reminders due on or before paidAt.
// The next month's reminder takes their place while the tenant still holds a unit.
func CancelDueReminders(tenantID uuid.UUID, paidAt time.Time) Step {
	return Step{
		Name: "cancel_due_reminders",
		Run: func(ctx context.Context, tx *Tx) error {
			due, err := tx.Reminders().FindActiveDueForTenant(ctx, tenantID, paidAt)
			if err != nil {
				return err
			}
			if len(due) == 0 {
				return nil
			}
			var latest *payment.Reminder
			for _, r := range due {
				if err := r.Cancel("rent paid", tx.Now); err != nil {
					return err
				}
				if err := tx.Reminders().Save(ctx, r); err != nil {
					return err
				}
				if latest == nil || r.NextRunDate.After(latest.NextRunDate) {
					latest = r
				}
			}

			active, err := tx.Reminders().ExistsActive(ctx, tenantID)
			if err != nil || active {
				return err
			}
			t, err := tx.Tenants().FindByID(ctx, tenantID)
			if err != nil {
				return err
			}
			if !t.HoldsUnit() {
				return nil
			}
			return tx.Reminders().Create(ctx, latest.Successor(t.EffectiveRent(tx.Now)))
		},
	}
}

// RecomputePropertyAggregates locks the property row and recomputes its occupancy
// and cash flow from the stored units, payments and expenses.
func RecomputePropertyAggregates(propertyID uuid.UUID) Step {
	return Step{
		Name: "recompute_property_aggregates",
		Run: func(ctx context.Context, tx *Tx) error {
			return RecomputeProperty(ctx, tx, propertyID)
		},
	}
}

// RecomputeProperty is the body of RecomputePropertyAggregates, usable inside other steps
func RecomputeProperty(ctx context.Context, tx *Tx, propertyID uuid.UUID) error {
	p, err := tx.Properties().FindByIDForUpdate(ctx, propertyID)
	if err != nil {
		return err
	}
	counts, err := tx.Units().CountForProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	income, paymentCount, err := tx.Payments().SumPaidByProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	expenses, expenseCount, err := tx.Expenses().SumActiveByProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	p.ApplyOccupancy(counts.Total, counts.Occupied)
	p.ApplyCashFlow(property.NewCashFlow(income, paymentCount, expenses, expenseCount, tx.Now))
	return tx.Properties().Save(ctx, p)
}

// Do wraps an inline function as a named step
func Do(name string, fn func(ctx context.Context, tx *Tx) error) Step {
	return Step{Name: name, Run: fn}
}

func samePaymentDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
