package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PropertyModel is the persistence model for the Property aggregate root
type PropertyModel struct {
	OrgAggregateModel
	Name          string           `gorm:"type:varchar(200);not null"`
	Address       property.Address `gorm:"type:jsonb;not null"`
	OwnerID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	NumberOfUnits int              `gorm:"not null;default:0"`
	OccupiedUnits int              `gorm:"not null;default:0"`
	OccupancyRate int              `gorm:"not null;default:0"`
	Income        decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentCount  int64            `gorm:"not null;default:0"`
	Expenses      decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	ExpenseCount  int64            `gorm:"not null;default:0"`
	NetIncome     decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	CashFlowAt    *time.Time
	Lifecycle     shared.Lifecycle `gorm:"type:varchar(20);not null;default:'LIVE';index"`
	ArchivedAt    *time.Time
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property
func (m *PropertyModel) ToDomain() *property.Property {
	return &property.Property{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		Name:             m.Name,
		Address:          m.Address,
		OwnerID:          m.OwnerID,
		NumberOfUnits:    m.NumberOfUnits,
		OccupiedUnits:    m.OccupiedUnits,
		OccupancyRate:    m.OccupancyRate,
		CashFlow: property.CashFlow{
			Income:       m.Income,
			Expenses:     m.Expenses,
			NetIncome:    m.NetIncome,
			PaymentCount: m.PaymentCount,
			ExpenseCount: m.ExpenseCount,
			CalculatedAt: m.CashFlowAt,
		},
		Lifecycle:  m.Lifecycle,
		ArchivedAt: m.ArchivedAt,
	}
}

// PropertyModelFromDomain creates a persistence model from a domain Property
func PropertyModelFromDomain(p *property.Property) *PropertyModel {
	m := &PropertyModel{
		Name:          p.Name,
		Address:       p.Address,
		OwnerID:       p.OwnerID,
		NumberOfUnits: p.NumberOfUnits,
		OccupiedUnits: p.OccupiedUnits,
		OccupancyRate: p.OccupancyRate,
		Income:        p.CashFlow.Income,
		PaymentCount:  p.CashFlow.PaymentCount,
		Expenses:      p.CashFlow.Expenses,
		ExpenseCount:  p.CashFlow.ExpenseCount,
		NetIncome:     p.CashFlow.NetIncome,
		CashFlowAt:    p.CashFlow.CalculatedAt,
		Lifecycle:     p.Lifecycle,
		ArchivedAt:    p.ArchivedAt,
	}
	m.FromDomainOrgAggregateRoot(p.OrgAggregateRoot)
	return m
}

// UnitModel is the persistence model for the Unit aggregate root.
// A live unit number is unique within its property.
type UnitModel struct {
	OrgAggregateModel
	PropertyID uuid.UUID                            `gorm:"type:uuid;not null;uniqueIndex:uq_units_property_number,where:lifecycle = 'LIVE'"`
	UnitNumber string                               `gorm:"type:varchar(50);not null;uniqueIndex:uq_units_property_number"`
	Status     property.UnitStatus                  `gorm:"type:varchar(20);not null;default:'AVAILABLE';index"`
	Lifecycle  shared.Lifecycle                     `gorm:"type:varchar(20);not null;default:'LIVE'"`
	TenantID   *uuid.UUID                           `gorm:"type:uuid;index"`
	RentAmount decimal.Decimal                      `gorm:"type:decimal(18,2);not null;default:0"`
	History    JSONColumn[property.HistoryTracking] `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit
func (m *UnitModel) ToDomain() *property.Unit {
	return &property.Unit{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		PropertyID:       m.PropertyID,
		UnitNumber:       m.UnitNumber,
		Status:           m.Status,
		Lifecycle:        m.Lifecycle,
		TenantID:         m.TenantID,
		RentAmount:       m.RentAmount,
		History:          m.History.Data,
	}
}

// UnitModelFromDomain creates a persistence model from a domain Unit
func UnitModelFromDomain(u *property.Unit) *UnitModel {
	m := &UnitModel{
		PropertyID: u.PropertyID,
		UnitNumber: u.UnitNumber,
		Status:     u.Status,
		Lifecycle:  u.Lifecycle,
		TenantID:   u.TenantID,
		RentAmount: u.RentAmount,
		History:    NewJSONColumn(u.History),
	}
	m.FromDomainOrgAggregateRoot(u.OrgAggregateRoot)
	return m
}

// ExpenseModel is the persistence model for the Expense aggregate root
type ExpenseModel struct {
	OrgAggregateModel
	PropertyID           uuid.UUID                `gorm:"type:uuid;not null;index:idx_expenses_property_status,priority:1"`
	UnitID               *uuid.UUID               `gorm:"type:uuid"`
	MaintenanceRequestID *uuid.UUID               `gorm:"type:uuid;index"`
	Category             property.ExpenseCategory `gorm:"type:varchar(30);not null"`
	Amount               decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	IncurredOn           time.Time                `gorm:"not null"`
	Description          string                   `gorm:"type:text"`
	Status               property.ExpenseStatus   `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_expenses_property_status,priority:2"`
	VoidReason           string                   `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *property.Expense {
	return &property.Expense{
		OrgAggregateRoot:     m.ToDomainOrgAggregateRoot(),
		PropertyID:           m.PropertyID,
		UnitID:               m.UnitID,
		MaintenanceRequestID: m.MaintenanceRequestID,
		Category:             m.Category,
		Amount:               m.Amount,
		IncurredOn:           m.IncurredOn,
		Description:          m.Description,
		Status:               m.Status,
		VoidReason:           m.VoidReason,
	}
}

// ExpenseModelFromDomain creates a persistence model from a domain Expense
func ExpenseModelFromDomain(e *property.Expense) *ExpenseModel {
	m := &ExpenseModel{
		PropertyID:           e.PropertyID,
		UnitID:               e.UnitID,
		MaintenanceRequestID: e.MaintenanceRequestID,
		Category:             e.Category,
		Amount:               e.Amount,
		IncurredOn:           e.IncurredOn,
		Description:          e.Description,
		Status:               e.Status,
		VoidReason:           e.VoidReason,
	}
	m.FromDomainOrgAggregateRoot(e.OrgAggregateRoot)
	return m
}

// MaintenanceRequestModel is the persistence model for maintenance requests
type MaintenanceRequestModel struct {
	OrgAggregateModel
	PropertyID      uuid.UUID                    `gorm:"type:uuid;not null;index"`
	UnitID          uuid.UUID                    `gorm:"type:uuid;not null;index:idx_maintenance_unit_status,priority:1"`
	TenantID        *uuid.UUID                   `gorm:"type:uuid"`
	Title           string                       `gorm:"type:varchar(200);not null"`
	Description     string                       `gorm:"type:text"`
	Priority        property.MaintenancePriority `gorm:"type:varchar(20);not null"`
	Status          property.MaintenanceStatus   `gorm:"type:varchar(20);not null;index:idx_maintenance_unit_status,priority:2"`
	BlocksOccupancy bool                         `gorm:"not null;default:false"`
	UnitBlocked     bool                         `gorm:"not null;default:false"`
	EstimatedCost   decimal.Decimal              `gorm:"type:decimal(18,2);not null;default:0"`
	ActualCost      decimal.Decimal              `gorm:"type:decimal(18,2);not null;default:0"`
	CompletedAt     *time.Time
}

// TableName returns the table name for GORM
func (MaintenanceRequestModel) TableName() string {
	return "maintenance_requests"
}

// ToDomain converts the persistence model to a domain MaintenanceRequest
func (m *MaintenanceRequestModel) ToDomain() *property.MaintenanceRequest {
	return &property.MaintenanceRequest{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		PropertyID:       m.PropertyID,
		UnitID:           m.UnitID,
		TenantID:         m.TenantID,
		Title:            m.Title,
		Description:      m.Description,
		Priority:         m.Priority,
		Status:           m.Status,
		BlocksOccupancy:  m.BlocksOccupancy,
		UnitBlocked:      m.UnitBlocked,
		EstimatedCost:    m.EstimatedCost,
		ActualCost:       m.ActualCost,
		CompletedAt:      m.CompletedAt,
	}
}

// MaintenanceRequestModelFromDomain creates a persistence model from a domain MaintenanceRequest
func MaintenanceRequestModelFromDomain(r *property.MaintenanceRequest) *MaintenanceRequestModel {
	m := &MaintenanceRequestModel{
		PropertyID:      r.PropertyID,
		UnitID:          r.UnitID,
		TenantID:        r.TenantID,
		Title:           r.Title,
		Description:     r.Description,
		Priority:        r.Priority,
		Status:          r.Status,
		BlocksOccupancy: r.BlocksOccupancy,
		UnitBlocked:     r.UnitBlocked,
		EstimatedCost:   r.EstimatedCost,
		ActualCost:      r.ActualCost,
		CompletedAt:     r.CompletedAt,
	}
	m.FromDomainOrgAggregateRoot(r.OrgAggregateRoot)
	return m
}
