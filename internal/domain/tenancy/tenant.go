package tenancy

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TenantStatus is the business status of a tenant. Archival is tracked separately
// by Lifecycle so that it never collides with these values.
type TenantStatus string

const (
	TenantStatusActive     TenantStatus = "ACTIVE"
	TenantStatusInactive   TenantStatus = "INACTIVE"
	TenantStatusLate       TenantStatus = "LATE"
	TenantStatusPending    TenantStatus = "PENDING"
	TenantStatusTerminated TenantStatus = "TERMINATED"
)

// IsValid checks if the status is valid
func (s TenantStatus) IsValid() bool {
	switch s {
	case TenantStatusActive, TenantStatusInactive, TenantStatusLate,
		TenantStatusPending, TenantStatusTerminated:
		return true
	}
	return false
}

// HoldsUnit reports whether a tenant in this status occupies a unit
func (s TenantStatus) HoldsUnit() bool {
	return s == TenantStatusActive || s == TenantStatusLate || s == TenantStatusPending
}

// OccupyingStatuses lists the statuses that hold a unit
func OccupyingStatuses() []TenantStatus {
	return []TenantStatus{TenantStatusActive, TenantStatusLate, TenantStatusPending}
}

// LatePaymentWindow is how recent a Paid payment must be for a tenant to be Active
const LatePaymentWindow = 30 * 24 * time.Hour

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Tenant is a renter occupying one unit of one property
type Tenant struct {
	shared.OrgAggregateRoot
	PropertyID          uuid.UUID
	UnitID              *uuid.UUID
	UnitNumber          string
	Name                string
	Email               string
	Phone               string
	Status              TenantStatus
	Lifecycle           shared.Lifecycle
	RentAmount          decimal.Decimal
	DiscountAmount      decimal.Decimal
	DiscountExpiresAt   *time.Time
	LeaseStartDate      time.Time
	LeaseEndDate        *time.Time
	LeaseDurationMonths int
	MoveInDate          *time.Time
	MoveOutDate         *time.Time
	LastPaymentDate     *time.Time
	ArchivedAt          *time.Time
}

// NewTenantInput carries the validated fields for a new tenant
type NewTenantInput struct {
	PropertyID          uuid.UUID
	UnitID              uuid.UUID
	UnitNumber          string
	Name                string
	Email               string
	Phone               string
	RentAmount          decimal.Decimal
	LeaseStartDate      time.Time
	LeaseEndDate        *time.Time
	LeaseDurationMonths int
}

// NewTenant creates a pending tenant placed into the given unit
func NewTenant(orgID uuid.UUID, in NewTenantInput) (*Tenant, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)

	if in.PropertyID == uuid.Nil {
		return nil, shared.NewValidationError("property_id", "property is required")
	}
	if in.UnitID == uuid.Nil {
		return nil, shared.NewValidationError("unit_id", "unit is required")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "tenant name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("name", "tenant name cannot exceed 200 characters")
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if in.RentAmount.IsNegative() {
		return nil, shared.NewValidationError("rent_amount", "rent cannot be negative")
	}
	if in.LeaseDurationMonths < 0 {
		return nil, shared.NewValidationError("lease_duration_months", "lease duration cannot be negative")
	}

	leaseStart := in.LeaseStartDate
	if leaseStart.IsZero() {
		leaseStart = shared.Now()
	}
	leaseStart = leaseStart.UTC()
	leaseEnd := in.LeaseEndDate
	if leaseEnd == nil && in.LeaseDurationMonths > 0 {
		end := leaseStart.AddDate(0, in.LeaseDurationMonths, 0)
		leaseEnd = &end
	}
	if leaseEnd != nil && !leaseEnd.After(leaseStart) {
		return nil, shared.NewValidationError("lease_end_date", "lease end must be after lease start")
	}

	unitID := in.UnitID
	t := &Tenant{
		OrgAggregateRoot:    shared.NewOrgAggregateRoot(orgID),
		PropertyID:          in.PropertyID,
		UnitID:              &unitID,
		UnitNumber:          in.UnitNumber,
		Name:                name,
		Email:               email,
		Phone:               strings.TrimSpace(in.Phone),
		Status:              TenantStatusPending,
		Lifecycle:           shared.LifecycleLive,
		RentAmount:          in.RentAmount,
		DiscountAmount:      decimal.Zero,
		LeaseStartDate:      leaseStart,
		LeaseEndDate:        leaseEnd,
		LeaseDurationMonths: in.LeaseDurationMonths,
	}
	moveIn := leaseStart
	t.MoveInDate = &moveIn
	t.AddDomainEvent(NewTenantAddedEvent(t))
	return t, nil
}

// NormalizeEmail lowercases and trims an email for uniqueness checks
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the email format
func ValidateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("email", "email is required")
	}
	if len(email) > 200 {
		return shared.NewValidationError("email", "email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("email", "invalid email format")
	}
	return nil
}

// IsArchived reports whether the tenant has been archived
func (t *Tenant) IsArchived() bool {
	return t.Lifecycle == shared.LifecycleArchived
}

// HoldsUnit reports whether the tenant currently occupies a unit
func (t *Tenant) HoldsUnit() bool {
	return !t.IsArchived() && t.UnitID != nil && t.Status.HoldsUnit()
}

// EffectiveRent returns the rent due at now, net of an unexpired discount
func (t *Tenant) EffectiveRent(now time.Time) decimal.Decimal {
	if t.discountActive(now) {
		rent := t.RentAmount.Sub(t.DiscountAmount)
		if rent.IsNegative() {
			return decimal.Zero
		}
		return rent
	}
	return t.RentAmount
}

func (t *Tenant) discountActive(now time.Time) bool {
	if !t.DiscountAmount.IsPositive() {
		return false
	}
	return t.DiscountExpiresAt == nil || now.Before(*t.DiscountExpiresAt)
}

// ClearExpiredDiscount drops a discount whose expiry has passed. Returns true when cleared.
func (t *Tenant) ClearExpiredDiscount(now time.Time) bool {
	if !t.DiscountAmount.IsPositive() || t.DiscountExpiresAt == nil || now.Before(*t.DiscountExpiresAt) {
		return false
	}
	t.DiscountAmount = decimal.Zero
	t.DiscountExpiresAt = nil
	t.Touch()
	return true
}

// ApplyDiscount sets a fixed rent discount, optionally expiring
func (t *Tenant) ApplyDiscount(amount decimal.Decimal, expiresAt *time.Time) error {
	if amount.IsNegative() {
		return shared.NewValidationError("discount_amount", "discount cannot be negative")
	}
	if amount.GreaterThan(t.RentAmount) {
		return shared.NewValidationError("discount_amount", "discount cannot exceed rent")
	}
	if expiresAt != nil && !expiresAt.After(shared.Now()) {
		return shared.NewValidationError("discount_expires_at", "discount expiry must be in the future")
	}
	t.DiscountAmount = amount
	t.DiscountExpiresAt = expiresAt
	t.Touch()
	t.IncrementVersion()
	return nil
}

// ChangeRent sets a new base rent
func (t *Tenant) ChangeRent(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, shared.NewValidationError("rent_amount", "rent cannot be negative")
	}
	if t.IsArchived() {
		return decimal.Zero, shared.NewDomainError(shared.CodeInvalidState, "tenant is archived")
	}
	old := t.RentAmount
	t.RentAmount = amount
	if t.DiscountAmount.GreaterThan(amount) {
		t.DiscountAmount = amount
	}
	t.Touch()
	t.IncrementVersion()
	return old, nil
}

// RecomputePaymentStatus sets Active when a Paid payment falls within the late window,
// Late otherwise. Only tenants holding a unit are affected. Returns true on change.
func (t *Tenant) RecomputePaymentStatus(hasRecentPaid bool, lastPaid *time.Time) bool {
	if lastPaid != nil && (t.LastPaymentDate == nil || lastPaid.After(*t.LastPaymentDate)) {
		p := *lastPaid
		t.LastPaymentDate = &p
	}
	if !t.HoldsUnit() {
		return false
	}
	next := TenantStatusLate
	if hasRecentPaid {
		next = TenantStatusActive
	}
	if next == t.Status {
		return false
	}
	old := t.Status
	t.Status = next
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTenantStatusChangedEvent(t, old, "payment status recomputed"))
	return true
}

// ChangeStatus applies a manual status change. It returns true when the change
// means the tenant no longer holds its unit and the unit must be released.
func (t *Tenant) ChangeStatus(target TenantStatus, reason string) (bool, error) {
	if !target.IsValid() {
		return false, shared.NewValidationError("status", fmt.Sprintf("invalid tenant status: %s", target))
	}
	if t.IsArchived() {
		return false, shared.NewDomainError(shared.CodeInvalidState, "tenant is archived")
	}
	if target == t.Status {
		return false, nil
	}
	if t.Status == TenantStatusTerminated {
		return false, shared.NewDomainError(shared.CodeInvalidTransition, "terminated tenants cannot change status").WithField("status")
	}
	if target.HoldsUnit() && t.UnitID == nil {
		return false, shared.NewDomainError(shared.CodeInvalidTransition,
			"tenant has no unit; transfer the tenant into a unit instead").WithField("status")
	}

	releases := t.Status.HoldsUnit() && !target.HoldsUnit()
	old := t.Status
	t.Status = target
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTenantStatusChangedEvent(t, old, reason))
	return releases, nil
}

// VacateUnit clears the tenant's unit reference after the unit was released
func (t *Tenant) VacateUnit(at time.Time) {
	t.UnitID = nil
	t.UnitNumber = ""
	t.MoveOutDate = &at
	t.Touch()
}

// MoveTo points the tenant at a new unit and rent as part of a transfer
func (t *Tenant) MoveTo(propertyID, unitID uuid.UUID, unitNumber string, rent decimal.Decimal, at time.Time) {
	t.PropertyID = propertyID
	t.UnitID = &unitID
	t.UnitNumber = unitNumber
	t.RentAmount = rent
	if t.DiscountAmount.GreaterThan(rent) {
		t.DiscountAmount = rent
	}
	t.MoveInDate = &at
	t.MoveOutDate = nil
	t.Touch()
	t.IncrementVersion()
}

// Archive soft-removes the tenant. The unit must already have been released.
func (t *Tenant) Archive(at time.Time) error {
	if t.IsArchived() {
		return shared.NewDomainError(shared.CodeInvalidState, "tenant is already archived")
	}
	lastUnit := t.UnitID
	t.Lifecycle = shared.LifecycleArchived
	t.ArchivedAt = &at
	if t.UnitID != nil {
		t.VacateUnit(at)
	}
	t.IncrementVersion()
	t.AddDomainEvent(NewTenantArchivedEvent(t, lastUnit))
	return nil
}
