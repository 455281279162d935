package property

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitStatus represents the occupancy status of a unit
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "AVAILABLE"
	UnitStatusOccupied    UnitStatus = "OCCUPIED"
	UnitStatusMaintenance UnitStatus = "MAINTENANCE"
	UnitStatusReserved    UnitStatus = "RESERVED"
	UnitStatusArchived    UnitStatus = "ARCHIVED"
)

// IsValid checks if the status is valid
func (s UnitStatus) IsValid() bool {
	switch s {
	case UnitStatusAvailable, UnitStatusOccupied, UnitStatusMaintenance,
		UnitStatusReserved, UnitStatusArchived:
		return true
	}
	return false
}

// IsVacant reports whether a tenant may be placed into a unit in this status
func (s UnitStatus) IsVacant() bool {
	return s == UnitStatusAvailable || s == UnitStatusReserved || s == UnitStatusMaintenance
}

// VacantStatuses lists the statuses from which a unit can be occupied
func VacantStatuses() []UnitStatus {
	return []UnitStatus{UnitStatusAvailable, UnitStatusReserved, UnitStatusMaintenance}
}

// unitTransitions is the whitelist of allowed status changes. Archived is terminal.
var unitTransitions = map[UnitStatus][]UnitStatus{
	UnitStatusAvailable:   {UnitStatusOccupied, UnitStatusMaintenance, UnitStatusReserved, UnitStatusArchived},
	UnitStatusOccupied:    {UnitStatusAvailable, UnitStatusMaintenance, UnitStatusArchived},
	UnitStatusMaintenance: {UnitStatusOccupied, UnitStatusAvailable, UnitStatusArchived},
	UnitStatusReserved:    {UnitStatusAvailable, UnitStatusOccupied, UnitStatusArchived},
	UnitStatusArchived:    {},
}

// CanTransition reports whether from -> to is in the transition table
func CanTransition(from, to UnitStatus) bool {
	for _, allowed := range unitTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// History retention bounds
const (
	MaxRentHistoryEntries = 24
	MaxStaySamples        = 50
)

// RentHistoryEntry is one rent change of a unit
type RentHistoryEntry struct {
	Amount         decimal.Decimal `json:"amount"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	EffectiveDate  time.Time       `json:"effective_date"`
	TenantID       *uuid.UUID      `json:"tenant_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
}

// StaySample is one completed occupancy
type StaySample struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	MovedInAt  time.Time `json:"moved_in_at"`
	MovedOutAt time.Time `json:"moved_out_at"`
	Days       float64   `json:"days"`
}

// HistoryTracking holds the occupancy history of a unit.
// StayCount and TotalStayDays cover every stay ever recorded; StaySamples keeps only
// the most recent MaxStaySamples for auditing.
type HistoryTracking struct {
	TotalTenants     int                `json:"total_tenants"`
	StayCount        int                `json:"stay_count"`
	TotalStayDays    float64            `json:"total_stay_days"`
	StaySamples      []StaySample       `json:"stay_samples,omitempty"`
	LastOccupiedDate *time.Time         `json:"last_occupied_date,omitempty"`
	LastVacatedDate  *time.Time         `json:"last_vacated_date,omitempty"`
	RentHistory      []RentHistoryEntry `json:"rent_history,omitempty"`
}

// AverageStayDuration returns the mean stay in days over all completed stays
func (h HistoryTracking) AverageStayDuration() float64 {
	if h.StayCount == 0 {
		return 0
	}
	return h.TotalStayDays / float64(h.StayCount)
}

// Unit is a rentable unit of a property and owns its occupancy state
type Unit struct {
	shared.OrgAggregateRoot
	PropertyID uuid.UUID
	UnitNumber string
	Status     UnitStatus
	Lifecycle  shared.Lifecycle
	TenantID   *uuid.UUID
	RentAmount decimal.Decimal
	History    HistoryTracking
}

// NewUnit creates an available unit
func NewUnit(orgID, propertyID uuid.UUID, unitNumber string, rent decimal.Decimal) (*Unit, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewValidationError("property_id", "property is required")
	}
	if unitNumber == "" {
		return nil, shared.NewValidationError("unit_number", "unit number cannot be empty")
	}
	if len(unitNumber) > 50 {
		return nil, shared.NewValidationError("unit_number", "unit number cannot exceed 50 characters")
	}
	if rent.IsNegative() {
		return nil, shared.NewValidationError("rent_amount", "rent cannot be negative")
	}
	return &Unit{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		PropertyID:       propertyID,
		UnitNumber:       unitNumber,
		Status:           UnitStatusAvailable,
		Lifecycle:        shared.LifecycleLive,
		RentAmount:       rent,
	}, nil
}

// UnitNumberFor formats the sequential unit number used when units are materialized
func UnitNumberFor(index int) string {
	return fmt.Sprintf("%03d", index)
}

// IsOccupied reports whether a tenant currently holds the unit
func (u *Unit) IsOccupied() bool {
	return u.Status == UnitStatusOccupied && u.TenantID != nil
}

// IsArchived reports whether the unit has been archived
func (u *Unit) IsArchived() bool {
	return u.Lifecycle == shared.LifecycleArchived
}

// AssignTenant places tenantID into the unit. The caller persists the result with a
// conditional write guarded on the status the unit had before this call.
func (u *Unit) AssignTenant(tenantID uuid.UUID, rent decimal.Decimal, at time.Time) error {
	if u.IsArchived() || u.TenantID != nil || !u.Status.IsVacant() {
		return shared.ErrUnitUnavailable.WithField("unit_id")
	}
	if !CanTransition(u.Status, UnitStatusOccupied) {
		return shared.ErrInvalidTransition
	}
	if rent.IsPositive() && !rent.Equal(u.RentAmount) {
		u.pushRentHistory(RentHistoryEntry{
			Amount:         rent,
			PreviousAmount: u.RentAmount,
			EffectiveDate:  at,
			TenantID:       &tenantID,
			Reason:         "tenant move-in",
		})
		u.RentAmount = rent
	}

	u.Status = UnitStatusOccupied
	u.TenantID = &tenantID
	u.History.TotalTenants++
	u.History.LastOccupiedDate = &at
	u.Touch()
	u.IncrementVersion()
	return nil
}

// ReleaseTenant vacates the unit into next (Available or Maintenance) and records the stay
func (u *Unit) ReleaseTenant(at time.Time, next UnitStatus) (StaySample, error) {
	if !u.IsOccupied() {
		return StaySample{}, shared.NewDomainError(shared.CodeConsistency, "unit has no tenant to release")
	}
	if next != UnitStatusAvailable && next != UnitStatusMaintenance {
		return StaySample{}, shared.ErrInvalidTransition.WithField("status")
	}
	if !CanTransition(u.Status, next) {
		return StaySample{}, shared.ErrInvalidTransition.WithField("status")
	}

	sample := StaySample{TenantID: *u.TenantID, MovedOutAt: at}
	if u.History.LastOccupiedDate != nil {
		sample.MovedInAt = *u.History.LastOccupiedDate
		if days := at.Sub(sample.MovedInAt).Hours() / 24; days > 0 {
			sample.Days = days
		}
	}
	u.History.StayCount++
	u.History.TotalStayDays += sample.Days
	u.History.StaySamples = append(u.History.StaySamples, sample)
	if len(u.History.StaySamples) > MaxStaySamples {
		u.History.StaySamples = u.History.StaySamples[len(u.History.StaySamples)-MaxStaySamples:]
	}

	u.Status = next
	u.TenantID = nil
	u.History.LastVacatedDate = &at
	u.Touch()
	u.IncrementVersion()
	return sample, nil
}

// ChangeStatus performs a manual status change. Occupancy changes go through
// AssignTenant/ReleaseTenant and archival through Archive.
func (u *Unit) ChangeStatus(target UnitStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("status", fmt.Sprintf("invalid unit status: %s", target))
	}
	if target == UnitStatusArchived {
		return u.Archive()
	}
	if target == UnitStatusOccupied {
		return shared.ErrInvalidTransition.WithField("status")
	}
	if u.TenantID != nil {
		return shared.NewDomainError(shared.CodeConsistency, "unit has an active tenant; release the tenant first").WithField("status")
	}
	if !CanTransition(u.Status, target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("cannot change unit status from %s to %s", u.Status, target)).WithField("status")
	}
	u.Status = target
	u.Touch()
	u.IncrementVersion()
	return nil
}

// Archive retires the unit. Archived is terminal.
func (u *Unit) Archive() error {
	if u.TenantID != nil {
		return shared.NewActiveTenantsExistError(1)
	}
	if !CanTransition(u.Status, UnitStatusArchived) {
		return shared.ErrInvalidTransition.WithField("status")
	}
	u.Status = UnitStatusArchived
	u.Lifecycle = shared.LifecycleArchived
	u.Touch()
	u.IncrementVersion()
	return nil
}

// CanBeDeleted reports whether the unit never held a tenant and may be hard-deleted
func (u *Unit) CanBeDeleted() bool {
	return u.History.TotalTenants == 0 && u.TenantID == nil
}

// ChangeRent sets a new rent and appends a rent history entry
func (u *Unit) ChangeRent(amount decimal.Decimal, at time.Time, reason string) error {
	if amount.IsNegative() {
		return shared.NewValidationError("rent_amount", "rent cannot be negative")
	}
	if u.IsArchived() {
		return shared.ErrInvalidState
	}
	if amount.Equal(u.RentAmount) {
		return nil
	}
	u.pushRentHistory(RentHistoryEntry{
		Amount:         amount,
		PreviousAmount: u.RentAmount,
		EffectiveDate:  at,
		TenantID:       u.TenantID,
		Reason:         reason,
	})
	u.RentAmount = amount
	u.Touch()
	u.IncrementVersion()
	return nil
}

// pushRentHistory appends e keeping the log ordered by effective date and bounded
func (u *Unit) pushRentHistory(e RentHistoryEntry) {
	h := append(u.History.RentHistory, e)
	sort.SliceStable(h, func(i, j int) bool {
		return h[i].EffectiveDate.Before(h[j].EffectiveDate)
	})
	if len(h) > MaxRentHistoryEntries {
		h = h[len(h)-MaxRentHistoryEntries:]
	}
	u.History.RentHistory = h
}

// Snapshot captures the occupancy-relevant state for history records
func (u *Unit) Snapshot() UnitSnapshot {
	return UnitSnapshot{
		Status:     u.Status,
		TenantID:   u.TenantID,
		RentAmount: u.RentAmount,
	}
}

// UnitSnapshot is a before/after view of a unit used by the history log
type UnitSnapshot struct {
	Status     UnitStatus      `json:"status"`
	TenantID   *uuid.UUID      `json:"tenant_id,omitempty"`
	RentAmount decimal.Decimal `json:"rent_amount"`
}
