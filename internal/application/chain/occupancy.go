package chain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// OccupyUnit places tenantID into unit and persists it with the conditional occupy
// write. A unit taken by a concurrent writer yields shared.ErrUnitUnavailable.
func OccupyUnit(ctx context.Context, tx *Tx, unit *property.Unit, tenantID uuid.UUID, rent decimal.Decimal, reason string) (*history.UnitHistory, error) {
	return OccupyUnitAt(ctx, tx, unit, tenantID, rent, reason, tx.Now)
}

// OccupyUnitAt is OccupyUnit with the move-in dated at instead of the chain clock
func OccupyUnitAt(ctx context.Context, tx *Tx, unit *property.Unit, tenantID uuid.UUID, rent decimal.Decimal, reason string, at time.Time) (*history.UnitHistory, error) {
	before := unit.Snapshot()
	expected := unit.Status
	if err := unit.AssignTenant(tenantID, rent, at); err != nil {
		return nil, err
	}
	if err := tx.Units().Occupy(ctx, unit, expected); err != nil {
		return nil, err
	}
	return history.NewUnitHistory(unit, history.UnitActionMovedIn, before, &tenantID, reason, at), nil
}

// ReleaseUnit vacates the unit held by tenantID into next. A unit that no longer
// references the tenant is returned untouched with no history record.
func ReleaseUnit(ctx context.Context, tx *Tx, unitID, tenantID uuid.UUID, next property.UnitStatus, reason string) (*property.Unit, *history.UnitHistory, error) {
	return ReleaseUnitAt(ctx, tx, unitID, tenantID, next, reason, tx.Now)
}

// ReleaseUnitAt is ReleaseUnit with the move-out dated at
func ReleaseUnitAt(ctx context.Context, tx *Tx, unitID, tenantID uuid.UUID, next property.UnitStatus, reason string, at time.Time) (*property.Unit, *history.UnitHistory, error) {
	unit, err := tx.Units().FindByID(ctx, unitID)
	if err != nil {
		return nil, nil, err
	}
	if unit.TenantID == nil || *unit.TenantID != tenantID {
		return unit, nil, nil
	}
	before := unit.Snapshot()
	if _, err := unit.ReleaseTenant(at, next); err != nil {
		return nil, nil, err
	}
	if err := tx.Units().SaveWithLock(ctx, unit); err != nil {
		return nil, nil, err
	}
	return unit, history.NewUnitHistory(unit, history.UnitActionMovedOut, before, &tenantID, reason, at), nil
}

// UnitRecords drops nil entries so optional history records can be passed to Record
func UnitRecords(records ...*history.UnitHistory) []*history.UnitHistory {
	out := make([]*history.UnitHistory, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
