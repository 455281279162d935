package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// UnitHistoryModel is the append-only persistence model for unit history
type UnitHistoryModel struct {
	ID         uuid.UUID                         `gorm:"type:uuid;primaryKey"`
	OrgID      uuid.UUID                         `gorm:"type:uuid;not null;index:idx_unit_history_org_unit,priority:1"`
	PropertyID uuid.UUID                         `gorm:"type:uuid;not null;index"`
	UnitID     uuid.UUID                         `gorm:"type:uuid;not null;index:idx_unit_history_org_unit,priority:2"`
	TenantID   *uuid.UUID                        `gorm:"type:uuid"`
	Action     history.UnitAction                `gorm:"type:varchar(30);not null"`
	Before     JSONColumn[property.UnitSnapshot] `gorm:"type:jsonb;not null"`
	After      JSONColumn[property.UnitSnapshot] `gorm:"type:jsonb;not null"`
	Reason     string                            `gorm:"type:varchar(500)"`
	ActorID    *uuid.UUID                        `gorm:"type:uuid"`
	OccurredAt time.Time                         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (UnitHistoryModel) TableName() string {
	return "unit_history"
}

// ToDomain converts the persistence model to a domain UnitHistory
func (m *UnitHistoryModel) ToDomain() history.UnitHistory {
	return history.UnitHistory{
		ID:         m.ID,
		OrgID:      m.OrgID,
		PropertyID: m.PropertyID,
		UnitID:     m.UnitID,
		TenantID:   m.TenantID,
		Action:     m.Action,
		Before:     m.Before.Data,
		After:      m.After.Data,
		Reason:     m.Reason,
		ActorID:    m.ActorID,
		OccurredAt: m.OccurredAt,
	}
}

// UnitHistoryModelFromDomain creates a persistence model from a domain UnitHistory
func UnitHistoryModelFromDomain(h *history.UnitHistory) *UnitHistoryModel {
	return &UnitHistoryModel{
		ID:         h.ID,
		OrgID:      h.OrgID,
		PropertyID: h.PropertyID,
		UnitID:     h.UnitID,
		TenantID:   h.TenantID,
		Action:     h.Action,
		Before:     NewJSONColumn(h.Before),
		After:      NewJSONColumn(h.After),
		Reason:     h.Reason,
		ActorID:    h.ActorID,
		OccurredAt: h.OccurredAt,
	}
}

// TenantMovementModel is the append-only persistence model for tenant movements
type TenantMovementModel struct {
	ID               uuid.UUID            `gorm:"type:uuid;primaryKey"`
	OrgID            uuid.UUID            `gorm:"type:uuid;not null;index:idx_movements_org_tenant,priority:1"`
	TenantID         uuid.UUID            `gorm:"type:uuid;not null;index:idx_movements_org_tenant,priority:2"`
	Kind             history.MovementKind `gorm:"type:varchar(30);not null"`
	FromPropertyID   *uuid.UUID           `gorm:"type:uuid"`
	FromUnitID       *uuid.UUID           `gorm:"type:uuid"`
	ToPropertyID     *uuid.UUID           `gorm:"type:uuid"`
	ToUnitID         *uuid.UUID           `gorm:"type:uuid"`
	OldRent          decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	NewRent          decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	ChangeAmount     decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	ChangePercentage decimal.Decimal      `gorm:"type:decimal(9,2);not null"`
	Reason           string               `gorm:"type:varchar(500)"`
	EffectiveDate    time.Time            `gorm:"not null;index"`
	ActorID          *uuid.UUID           `gorm:"type:uuid"`
	CreatedAt        time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantMovementModel) TableName() string {
	return "tenant_movements"
}

// ToDomain converts the persistence model to a domain TenantMovement
func (m *TenantMovementModel) ToDomain() history.TenantMovement {
	return history.TenantMovement{
		ID:             m.ID,
		OrgID:          m.OrgID,
		TenantID:       m.TenantID,
		Kind:           m.Kind,
		FromPropertyID: m.FromPropertyID,
		FromUnitID:     m.FromUnitID,
		ToPropertyID:   m.ToPropertyID,
		ToUnitID:       m.ToUnitID,
		RentChange: history.RentChange{
			OldRent:          m.OldRent,
			NewRent:          m.NewRent,
			ChangeAmount:     m.ChangeAmount,
			ChangePercentage: m.ChangePercentage,
		},
		Reason:        m.Reason,
		EffectiveDate: m.EffectiveDate,
		ActorID:       m.ActorID,
		CreatedAt:     m.CreatedAt,
	}
}

// TenantMovementModelFromDomain creates a persistence model from a domain TenantMovement
func TenantMovementModelFromDomain(mv *history.TenantMovement) *TenantMovementModel {
	return &TenantMovementModel{
		ID:               mv.ID,
		OrgID:            mv.OrgID,
		TenantID:         mv.TenantID,
		Kind:             mv.Kind,
		FromPropertyID:   mv.FromPropertyID,
		FromUnitID:       mv.FromUnitID,
		ToPropertyID:     mv.ToPropertyID,
		ToUnitID:         mv.ToUnitID,
		OldRent:          mv.RentChange.OldRent,
		NewRent:          mv.RentChange.NewRent,
		ChangeAmount:     mv.RentChange.ChangeAmount,
		ChangePercentage: mv.RentChange.ChangePercentage,
		Reason:           mv.Reason,
		EffectiveDate:    mv.EffectiveDate,
		ActorID:          mv.ActorID,
		CreatedAt:        mv.CreatedAt,
	}
}
