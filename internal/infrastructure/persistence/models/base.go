package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// OrgAggregateModel provides common persistence fields for organization-scoped aggregate roots
type OrgAggregateModel struct {
	AggregateModel
	OrgID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// FromDomainOrgAggregateRoot populates OrgAggregateModel from the domain root
func (m *OrgAggregateModel) FromDomainOrgAggregateRoot(o shared.OrgAggregateRoot) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.Version = o.Version
	m.OrgID = o.OrgID
	m.CreatedBy = o.CreatedBy
}

// ToDomainOrgAggregateRoot builds the domain root and marks its version as stored
func (m *OrgAggregateModel) ToDomainOrgAggregateRoot() shared.OrgAggregateRoot {
	root := shared.OrgAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		OrgID:     m.OrgID,
		CreatedBy: m.CreatedBy,
	}
	root.MarkStored()
	return root
}
