package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"github.com/shopspring/decimal"
)

// TenantModel is the persistence model for the Tenant aggregate root.
// Two partial unique indexes allow one live tenant per (property, unit) and per
// (property, email); archived tenants and tenants without a unit never collide.
type TenantModel struct {
	OrgAggregateModel
	PropertyID          uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:uq_tenants_property_unit,where:lifecycle = 'LIVE';uniqueIndex:uq_tenants_property_email,where:lifecycle = 'LIVE'"`
	UnitID              *uuid.UUID           `gorm:"type:uuid;uniqueIndex:uq_tenants_property_unit"`
	UnitNumber          string               `gorm:"type:varchar(50)"`
	Name                string               `gorm:"type:varchar(200);not null"`
	Email               string               `gorm:"type:varchar(200);not null;uniqueIndex:uq_tenants_property_email;index"`
	Phone               string               `gorm:"type:varchar(50)"`
	Status              tenancy.TenantStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Lifecycle           shared.Lifecycle     `gorm:"type:varchar(20);not null;default:'LIVE';index"`
	RentAmount          decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountExpiresAt   *time.Time
	LeaseStartDate      time.Time `gorm:"not null"`
	LeaseEndDate        *time.Time
	LeaseDurationMonths int `gorm:"not null;default:0"`
	MoveInDate          *time.Time
	MoveOutDate         *time.Time
	LastPaymentDate     *time.Time
	ArchivedAt          *time.Time
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *tenancy.Tenant {
	return &tenancy.Tenant{
		OrgAggregateRoot:    m.ToDomainOrgAggregateRoot(),
		PropertyID:          m.PropertyID,
		UnitID:              m.UnitID,
		UnitNumber:          m.UnitNumber,
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		Status:              m.Status,
		Lifecycle:           m.Lifecycle,
		RentAmount:          m.RentAmount,
		DiscountAmount:      m.DiscountAmount,
		DiscountExpiresAt:   m.DiscountExpiresAt,
		LeaseStartDate:      m.LeaseStartDate,
		LeaseEndDate:        m.LeaseEndDate,
		LeaseDurationMonths: m.LeaseDurationMonths,
		MoveInDate:          m.MoveInDate,
		MoveOutDate:         m.MoveOutDate,
		LastPaymentDate:     m.LastPaymentDate,
		ArchivedAt:          m.ArchivedAt,
	}
}

// TenantModelFromDomain creates a persistence model from a domain Tenant
func TenantModelFromDomain(t *tenancy.Tenant) *TenantModel {
	m := &TenantModel{
		PropertyID:          t.PropertyID,
		UnitID:              t.UnitID,
		UnitNumber:          t.UnitNumber,
		Name:                t.Name,
		Email:               t.Email,
		Phone:               t.Phone,
		Status:              t.Status,
		Lifecycle:           t.Lifecycle,
		RentAmount:          t.RentAmount,
		DiscountAmount:      t.DiscountAmount,
		DiscountExpiresAt:   t.DiscountExpiresAt,
		LeaseStartDate:      t.LeaseStartDate,
		LeaseEndDate:        t.LeaseEndDate,
		LeaseDurationMonths: t.LeaseDurationMonths,
		MoveInDate:          t.MoveInDate,
		MoveOutDate:         t.MoveOutDate,
		LastPaymentDate:     t.LastPaymentDate,
		ArchivedAt:          t.ArchivedAt,
	}
	m.FromDomainOrgAggregateRoot(t.OrgAggregateRoot)
	return m
}
