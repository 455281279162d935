package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitAction is the kind of change recorded in a unit's history
type UnitAction string

const (
	UnitActionMovedIn       UnitAction = "MOVED_IN"
	UnitActionMovedOut      UnitAction = "MOVED_OUT"
	UnitActionStatusChanged UnitAction = "STATUS_CHANGED"
	UnitActionRentChanged   UnitAction = "RENT_CHANGED"
	UnitActionArchived      UnitAction = "ARCHIVED"
)

// UnitHistory is an immutable before/after record of one unit state change
type UnitHistory struct {
	ID         uuid.UUID
	OrgID      uuid.UUID
	PropertyID uuid.UUID
	UnitID     uuid.UUID
	TenantID   *uuid.UUID
	Action     UnitAction
	Before     property.UnitSnapshot
	After      property.UnitSnapshot
	Reason     string
	ActorID    *uuid.UUID
	OccurredAt time.Time
}

// NewUnitHistory records a unit transition from before to the unit's current state
func NewUnitHistory(u *property.Unit, action UnitAction, before property.UnitSnapshot, tenantID *uuid.UUID, reason string, at time.Time) *UnitHistory {
	return &UnitHistory{
		ID:         uuid.New(),
		OrgID:      u.OrgID,
		PropertyID: u.PropertyID,
		UnitID:     u.ID,
		TenantID:   tenantID,
		Action:     action,
		Before:     before,
		After:      u.Snapshot(),
		Reason:     reason,
		OccurredAt: at,
	}
}

// MovementKind classifies tenant movements
type MovementKind string

const (
	MovementKindMoveIn     MovementKind = "MOVE_IN"
	MovementKindTransfer   MovementKind = "TRANSFER"
	MovementKindRentChange MovementKind = "RENT_CHANGE"
	MovementKindMoveOut    MovementKind = "MOVE_OUT"
)

// RentChange describes how rent moved between two values
type RentChange struct {
	OldRent          decimal.Decimal `json:"old_rent"`
	NewRent          decimal.Decimal `json:"new_rent"`
	ChangeAmount     decimal.Decimal `json:"change_amount"`
	ChangePercentage decimal.Decimal `json:"change_percentage"`
}

// NewRentChange computes the change from oldRent to newRent. The percentage is
// relative to oldRent, rounded to two places, and zero when oldRent is zero.
func NewRentChange(oldRent, newRent decimal.Decimal) RentChange {
	change := newRent.Sub(oldRent)
	pct := decimal.Zero
	if !oldRent.IsZero() {
		pct = change.Div(oldRent).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return RentChange{
		OldRent:          oldRent,
		NewRent:          newRent,
		ChangeAmount:     change,
		ChangePercentage: pct,
	}
}

// TenantMovement is an immutable record of a tenant moving or having its rent changed
type TenantMovement struct {
	ID             uuid.UUID
	OrgID          uuid.UUID
	TenantID       uuid.UUID
	Kind           MovementKind
	FromPropertyID *uuid.UUID
	FromUnitID     *uuid.UUID
	ToPropertyID   *uuid.UUID
	ToUnitID       *uuid.UUID
	RentChange     RentChange
	Reason         string
	EffectiveDate  time.Time
	ActorID        *uuid.UUID
	CreatedAt      time.Time
}

// MovementInput holds the endpoints of a movement. Nil endpoints are left empty.
type MovementInput struct {
	OrgID          uuid.UUID
	TenantID       uuid.UUID
	Kind           MovementKind
	FromPropertyID *uuid.UUID
	FromUnitID     *uuid.UUID
	ToPropertyID   *uuid.UUID
	ToUnitID       *uuid.UUID
	OldRent        decimal.Decimal
	NewRent        decimal.Decimal
	Reason         string
	EffectiveDate  time.Time
}

// NewTenantMovement creates a movement record
func NewTenantMovement(in MovementInput) *TenantMovement {
	effective := in.EffectiveDate
	if effective.IsZero() {
		effective = shared.Now()
	}
	return &TenantMovement{
		ID:             uuid.New(),
		OrgID:          in.OrgID,
		TenantID:       in.TenantID,
		Kind:           in.Kind,
		FromPropertyID: in.FromPropertyID,
		FromUnitID:     in.FromUnitID,
		ToPropertyID:   in.ToPropertyID,
		ToUnitID:       in.ToUnitID,
		RentChange:     NewRentChange(in.OldRent, in.NewRent),
		Reason:         in.Reason,
		EffectiveDate:  effective,
		CreatedAt:      shared.Now(),
	}
}

// Attribute records the acting user on history records
func Attribute(actorID uuid.UUID, units []*UnitHistory, movements []*TenantMovement) {
	if actorID == uuid.Nil {
		return
	}
	for _, h := range units {
		h.ActorID = &actorID
	}
	for _, m := range movements {
		m.ActorID = &actorID
	}
}
