package tenancy

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/tenancy"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Tenant DTOs
// =============================================================================

// CreateTenantRequest represents a request to place a new tenant into a unit
type CreateTenantRequest struct {
	PropertyID          uuid.UUID       `json:"property_id" binding:"required"`
	UnitID              uuid.UUID       `json:"unit_id" binding:"required"`
	Name                string          `json:"name" binding:"required,min=1,max=200"`
	Email               string          `json:"email" binding:"required,email,max=200"`
	Phone               string          `json:"phone" binding:"max=50"`
	RentAmount          decimal.Decimal `json:"rent_amount"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	DiscountExpiresAt   *time.Time      `json:"discount_expires_at"`
	LeaseStartDate      *time.Time      `json:"lease_start_date"`
	LeaseEndDate        *time.Time      `json:"lease_end_date"`
	LeaseDurationMonths int             `json:"lease_duration_months" binding:"min=0,max=600"`
}

// TransferTenantRequest represents a request to move a tenant to another unit.
// FromUnitID, when set, must name the unit the tenant holds. TransferDate
// defaults to now and cannot lie in the future.
type TransferTenantRequest struct {
	PropertyID   uuid.UUID  `json:"property_id" binding:"required"`
	UnitID       uuid.UUID  `json:"unit_id" binding:"required"`
	FromUnitID   *uuid.UUID `json:"from_unit_id"`
	TransferDate *time.Time `json:"transfer_date"`
	Reason       string     `json:"reason" binding:"max=500"`
}

// ChangeTenantStatusRequest represents a manual tenant status change
type ChangeTenantStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE LATE PENDING TERMINATED"`
	Reason string `json:"reason" binding:"max=500"`
}

// ChangeTenantRentRequest represents a tenant rent change with an optional discount
type ChangeTenantRentRequest struct {
	RentAmount        decimal.Decimal  `json:"rent_amount"`
	DiscountAmount    *decimal.Decimal `json:"discount_amount"`
	DiscountExpiresAt *time.Time       `json:"discount_expires_at"`
	Reason            string           `json:"reason" binding:"max=500"`
	// UpdateUnitRent also sets the asking rent of the unit the tenant holds
	UpdateUnitRent bool `json:"update_unit_rent"`
}

// ListTenantsRequest filters tenant listings
type ListTenantsRequest struct {
	Page            int        `form:"page" binding:"omitempty,min=1"`
	PageSize        int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	PropertyID      *uuid.UUID `form:"property_id"`
	Statuses        []string   `form:"status" binding:"omitempty,dive,oneof=ACTIVE INACTIVE LATE PENDING TERMINATED"`
	IncludeArchived bool       `form:"include_archived"`
	SortBy          string     `form:"sort_by"`
	SortOrder       string     `form:"sort_order"`
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID                  uuid.UUID       `json:"id"`
	OrgID               uuid.UUID       `json:"org_id"`
	PropertyID          uuid.UUID       `json:"property_id"`
	UnitID              *uuid.UUID      `json:"unit_id,omitempty"`
	UnitNumber          string          `json:"unit_number,omitempty"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone,omitempty"`
	Status              string          `json:"status"`
	Lifecycle           string          `json:"lifecycle"`
	RentAmount          decimal.Decimal `json:"rent_amount"`
	EffectiveRent       decimal.Decimal `json:"effective_rent"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	DiscountExpiresAt   *time.Time      `json:"discount_expires_at,omitempty"`
	LeaseStartDate      time.Time       `json:"lease_start_date"`
	LeaseEndDate        *time.Time      `json:"lease_end_date,omitempty"`
	LeaseDurationMonths int             `json:"lease_duration_months"`
	MoveInDate          *time.Time      `json:"move_in_date,omitempty"`
	MoveOutDate         *time.Time      `json:"move_out_date,omitempty"`
	LastPaymentDate     *time.Time      `json:"last_payment_date,omitempty"`
	ArchivedAt          *time.Time      `json:"archived_at,omitempty"`
	Version             int             `json:"version"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ToTenantResponse converts a domain tenant to a response, with the rent due at now
func ToTenantResponse(t *tenancy.Tenant, now time.Time) TenantResponse {
	return TenantResponse{
		ID:                  t.ID,
		OrgID:               t.OrgID,
		PropertyID:          t.PropertyID,
		UnitID:              t.UnitID,
		UnitNumber:          t.UnitNumber,
		Name:                t.Name,
		Email:               t.Email,
		Phone:               t.Phone,
		Status:              string(t.Status),
		Lifecycle:           string(t.Lifecycle),
		RentAmount:          t.RentAmount,
		EffectiveRent:       t.EffectiveRent(now),
		DiscountAmount:      t.DiscountAmount,
		DiscountExpiresAt:   t.DiscountExpiresAt,
		LeaseStartDate:      t.LeaseStartDate,
		LeaseEndDate:        t.LeaseEndDate,
		LeaseDurationMonths: t.LeaseDurationMonths,
		MoveInDate:          t.MoveInDate,
		MoveOutDate:         t.MoveOutDate,
		LastPaymentDate:     t.LastPaymentDate,
		ArchivedAt:          t.ArchivedAt,
		Version:             t.Version,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

// =============================================================================
// Movement DTOs
// =============================================================================

// RentChangeResponse describes how rent moved
type RentChangeResponse struct {
	OldRent          decimal.Decimal `json:"old_rent"`
	NewRent          decimal.Decimal `json:"new_rent"`
	ChangeAmount     decimal.Decimal `json:"change_amount"`
	ChangePercentage decimal.Decimal `json:"change_percentage"`
}

// MovementResponse represents a tenant movement record
type MovementResponse struct {
	ID             uuid.UUID          `json:"id"`
	TenantID       uuid.UUID          `json:"tenant_id"`
	Kind           string             `json:"kind"`
	FromPropertyID *uuid.UUID         `json:"from_property_id,omitempty"`
	FromUnitID     *uuid.UUID         `json:"from_unit_id,omitempty"`
	ToPropertyID   *uuid.UUID         `json:"to_property_id,omitempty"`
	ToUnitID       *uuid.UUID         `json:"to_unit_id,omitempty"`
	RentChange     RentChangeResponse `json:"rent_change"`
	Reason         string             `json:"reason,omitempty"`
	EffectiveDate  time.Time          `json:"effective_date"`
	ActorID        *uuid.UUID         `json:"actor_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ToMovementResponse converts a movement record to a response
func ToMovementResponse(m *history.TenantMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		TenantID:       m.TenantID,
		Kind:           string(m.Kind),
		FromPropertyID: m.FromPropertyID,
		FromUnitID:     m.FromUnitID,
		ToPropertyID:   m.ToPropertyID,
		ToUnitID:       m.ToUnitID,
		RentChange: RentChangeResponse{
			OldRent:          m.RentChange.OldRent,
			NewRent:          m.RentChange.NewRent,
			ChangeAmount:     m.RentChange.ChangeAmount,
			ChangePercentage: m.RentChange.ChangePercentage,
		},
		Reason:        m.Reason,
		EffectiveDate: m.EffectiveDate,
		ActorID:       m.ActorID,
		CreatedAt:     m.CreatedAt,
	}
}

// TenantMovementResponse is a tenant together with the movement that changed it
type TenantMovementResponse struct {
	Tenant   TenantResponse   `json:"tenant"`
	Movement MovementResponse `json:"movement"`
}

// LateSweepResult summarizes one late sweep run
type LateSweepResult struct {
	Checked  int `json:"checked"`
	MadeLate int `json:"made_late"`
	Failed   int `json:"failed"`
}
