package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Property DTOs
// =============================================================================

// AddressRequest is the postal address of a property
type AddressRequest struct {
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

func (a AddressRequest) toDomain() property.Address {
	return property.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// CreatePropertyRequest represents a request to create a property with its initial units
type CreatePropertyRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Address       AddressRequest  `json:"address" binding:"required"`
	OwnerID       *uuid.UUID      `json:"owner_id"`
	NumberOfUnits int             `json:"number_of_units" binding:"min=0,max=1000"`
	DefaultRent   decimal.Decimal `json:"default_rent"`
}

// AddUnitsRequest represents a request to grow a property by count units
type AddUnitsRequest struct {
	Count      int             `json:"count" binding:"required,min=1,max=1000"`
	RentAmount decimal.Decimal `json:"rent_amount"`
}

// CashFlowResponse represents the derived cash flow of a property
type CashFlowResponse struct {
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	NetIncome    decimal.Decimal `json:"net_income"`
	PaymentCount int64           `json:"payment_count"`
	ExpenseCount int64           `json:"expense_count"`
	CalculatedAt *time.Time      `json:"calculated_at,omitempty"`
}

// PropertyResponse represents a property in API responses
type PropertyResponse struct {
	ID            uuid.UUID        `json:"id"`
	OrgID         uuid.UUID        `json:"org_id"`
	Name          string           `json:"name"`
	Address       property.Address `json:"address"`
	OwnerID       uuid.UUID        `json:"owner_id"`
	NumberOfUnits int              `json:"number_of_units"`
	OccupiedUnits int              `json:"occupied_units"`
	OccupancyRate int              `json:"occupancy_rate"`
	CashFlow      CashFlowResponse `json:"cash_flow"`
	Lifecycle     string           `json:"lifecycle"`
	ArchivedAt    *time.Time       `json:"archived_at,omitempty"`
	Units         []UnitResponse   `json:"units,omitempty"`
	Version       int              `json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ToCashFlowResponse converts a domain CashFlow to its response
func ToCashFlowResponse(cf property.CashFlow) CashFlowResponse {
	return CashFlowResponse{
		Income:       cf.Income,
		Expenses:     cf.Expenses,
		NetIncome:    cf.NetIncome,
		PaymentCount: cf.PaymentCount,
		ExpenseCount: cf.ExpenseCount,
		CalculatedAt: cf.CalculatedAt,
	}
}

// ToPropertyResponse converts a domain Property to PropertyResponse
func ToPropertyResponse(p *property.Property) PropertyResponse {
	return PropertyResponse{
		ID:            p.ID,
		OrgID:         p.OrgID,
		Name:          p.Name,
		Address:       p.Address,
		OwnerID:       p.OwnerID,
		NumberOfUnits: p.NumberOfUnits,
		OccupiedUnits: p.OccupiedUnits,
		OccupancyRate: p.OccupancyRate,
		CashFlow:      ToCashFlowResponse(p.CashFlow),
		Lifecycle:     string(p.Lifecycle),
		ArchivedAt:    p.ArchivedAt,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// =============================================================================
// Unit DTOs
// =============================================================================

// ChangeUnitStatusRequest represents a manual unit status change
type ChangeUnitStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=AVAILABLE MAINTENANCE RESERVED ARCHIVED"`
	Reason string `json:"reason" binding:"max=500"`
}

// ChangeUnitRentRequest represents a change of a unit's asking rent
type ChangeUnitRentRequest struct {
	RentAmount decimal.Decimal `json:"rent_amount"`
	Reason     string          `json:"reason" binding:"max=500"`
}

// RentHistoryResponse is one rent history entry
type RentHistoryResponse struct {
	Amount         decimal.Decimal `json:"amount"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	EffectiveDate  time.Time       `json:"effective_date"`
	TenantID       *uuid.UUID      `json:"tenant_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
}

// HistoryTrackingResponse is the occupancy history summary of a unit
type HistoryTrackingResponse struct {
	TotalTenants        int                   `json:"total_tenants"`
	AverageStayDuration float64               `json:"average_stay_duration"`
	StayCount           int                   `json:"stay_count"`
	LastOccupiedDate    *time.Time            `json:"last_occupied_date,omitempty"`
	LastVacatedDate     *time.Time            `json:"last_vacated_date,omitempty"`
	RentHistory         []RentHistoryResponse `json:"rent_history"`
}

// UnitResponse represents a unit in API responses
type UnitResponse struct {
	ID              uuid.UUID               `json:"id"`
	PropertyID      uuid.UUID               `json:"property_id"`
	UnitNumber      string                  `json:"unit_number"`
	Status          string                  `json:"status"`
	Lifecycle       string                  `json:"lifecycle"`
	TenantID        *uuid.UUID              `json:"tenant_id,omitempty"`
	RentAmount      decimal.Decimal         `json:"rent_amount"`
	HistoryTracking HistoryTrackingResponse `json:"history_tracking"`
	Version         int                     `json:"version"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// RemoveUnitResponse says whether a removed unit was deleted or archived
type RemoveUnitResponse struct {
	UnitID   uuid.UUID `json:"unit_id"`
	Archived bool      `json:"archived"`
}

// ToUnitResponse converts a domain Unit to UnitResponse
func ToUnitResponse(u *property.Unit) UnitResponse {
	rentHistory := make([]RentHistoryResponse, len(u.History.RentHistory))
	for i, e := range u.History.RentHistory {
		rentHistory[i] = RentHistoryResponse{
			Amount:         e.Amount,
			PreviousAmount: e.PreviousAmount,
			EffectiveDate:  e.EffectiveDate,
			TenantID:       e.TenantID,
			Reason:         e.Reason,
		}
	}
	return UnitResponse{
		ID:         u.ID,
		PropertyID: u.PropertyID,
		UnitNumber: u.UnitNumber,
		Status:     string(u.Status),
		Lifecycle:  string(u.Lifecycle),
		TenantID:   u.TenantID,
		RentAmount: u.RentAmount,
		HistoryTracking: HistoryTrackingResponse{
			TotalTenants:        u.History.TotalTenants,
			AverageStayDuration: u.History.AverageStayDuration(),
			StayCount:           u.History.StayCount,
			LastOccupiedDate:    u.History.LastOccupiedDate,
			LastVacatedDate:     u.History.LastVacatedDate,
			RentHistory:         rentHistory,
		},
		Version:   u.Version,
		UpdatedAt: u.UpdatedAt,
	}
}

// UnitHistoryResponse is one entry of a unit's history log
type UnitHistoryResponse struct {
	ID         uuid.UUID             `json:"id"`
	UnitID     uuid.UUID             `json:"unit_id"`
	TenantID   *uuid.UUID            `json:"tenant_id,omitempty"`
	Action     string                `json:"action"`
	Before     property.UnitSnapshot `json:"before"`
	After      property.UnitSnapshot `json:"after"`
	Reason     string                `json:"reason,omitempty"`
	ActorID    *uuid.UUID            `json:"actor_id,omitempty"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// ToUnitHistoryResponse converts a history record to its response
func ToUnitHistoryResponse(h *history.UnitHistory) UnitHistoryResponse {
	return UnitHistoryResponse{
		ID:         h.ID,
		UnitID:     h.UnitID,
		TenantID:   h.TenantID,
		Action:     string(h.Action),
		Before:     h.Before,
		After:      h.After,
		Reason:     h.Reason,
		ActorID:    h.ActorID,
		OccurredAt: h.OccurredAt,
	}
}

// =============================================================================
// Maintenance DTOs
// =============================================================================

// CreateMaintenanceRequest represents a request to open a maintenance job
type CreateMaintenanceRequest struct {
	UnitID          uuid.UUID       `json:"unit_id" binding:"required"`
	Title           string          `json:"title" binding:"required,min=1,max=200"`
	Description     string          `json:"description" binding:"max=2000"`
	Priority        string          `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH EMERGENCY"`
	BlocksOccupancy bool            `json:"blocks_occupancy"`
	EstimatedCost   decimal.Decimal `json:"estimated_cost"`
}

// CompleteMaintenanceRequest closes a maintenance job
type CompleteMaintenanceRequest struct {
	ActualCost decimal.Decimal `json:"actual_cost"`
}

// MaintenanceResponse represents a maintenance request in API responses
type MaintenanceResponse struct {
	ID              uuid.UUID       `json:"id"`
	PropertyID      uuid.UUID       `json:"property_id"`
	UnitID          uuid.UUID       `json:"unit_id"`
	TenantID        *uuid.UUID      `json:"tenant_id,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Priority        string          `json:"priority"`
	Status          string          `json:"status"`
	BlocksOccupancy bool            `json:"blocks_occupancy"`
	UnitBlocked     bool            `json:"unit_blocked"`
	EstimatedCost   decimal.Decimal `json:"estimated_cost"`
	ActualCost      decimal.Decimal `json:"actual_cost"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToMaintenanceResponse converts a domain MaintenanceRequest to its response
func ToMaintenanceResponse(m *property.MaintenanceRequest) MaintenanceResponse {
	return MaintenanceResponse{
		ID:              m.ID,
		PropertyID:      m.PropertyID,
		UnitID:          m.UnitID,
		TenantID:        m.TenantID,
		Title:           m.Title,
		Description:     m.Description,
		Priority:        string(m.Priority),
		Status:          string(m.Status),
		BlocksOccupancy: m.BlocksOccupancy,
		UnitBlocked:     m.UnitBlocked,
		EstimatedCost:   m.EstimatedCost,
		ActualCost:      m.ActualCost,
		CompletedAt:     m.CompletedAt,
		CreatedAt:       m.CreatedAt,
	}
}

// =============================================================================
// Expense DTOs
// =============================================================================

// RecordExpenseRequest represents a request to book an expense
type RecordExpenseRequest struct {
	PropertyID  uuid.UUID       `json:"property_id" binding:"required"`
	UnitID      *uuid.UUID      `json:"unit_id"`
	Category    string          `json:"category" binding:"required,oneof=MAINTENANCE UTILITIES INSURANCE TAX MANAGEMENT OTHER"`
	Amount      decimal.Decimal `json:"amount"`
	IncurredOn  *time.Time      `json:"incurred_on"`
	Description string          `json:"description" binding:"max=1000"`
}

// VoidExpenseRequest represents a request to void an expense
type VoidExpenseRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID                   uuid.UUID       `json:"id"`
	PropertyID           uuid.UUID       `json:"property_id"`
	UnitID               *uuid.UUID      `json:"unit_id,omitempty"`
	MaintenanceRequestID *uuid.UUID      `json:"maintenance_request_id,omitempty"`
	Category             string          `json:"category"`
	Amount               decimal.Decimal `json:"amount"`
	IncurredOn           time.Time       `json:"incurred_on"`
	Description          string          `json:"description,omitempty"`
	Status               string          `json:"status"`
	VoidReason           string          `json:"void_reason,omitempty"`
}

// ToExpenseResponse converts a domain Expense to its response
func ToExpenseResponse(e *property.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:                   e.ID,
		PropertyID:           e.PropertyID,
		UnitID:               e.UnitID,
		MaintenanceRequestID: e.MaintenanceRequestID,
		Category:             string(e.Category),
		Amount:               e.Amount,
		IncurredOn:           e.IncurredOn,
		Description:          e.Description,
		Status:               string(e.Status),
		VoidReason:           e.VoidReason,
	}
}
