package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for audit entries.
// EventID is unique so a redelivered event never produces a second entry.
type AuditLogModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrgID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_org_entity,priority:1"`
	EventID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	EventType  string     `gorm:"type:varchar(100);not null;index"`
	EntityType string     `gorm:"type:varchar(100);not null;index:idx_audit_org_entity,priority:2"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_org_entity,priority:3"`
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	Payload    []byte     `gorm:"type:jsonb;not null"`
	OccurredAt time.Time  `gorm:"not null"`
	CreatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain Entry
func (m *AuditLogModel) ToDomain() audit.Entry {
	return audit.Entry{
		ID:         m.ID,
		OrgID:      m.OrgID,
		EventID:    m.EventID,
		EventType:  m.EventType,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		ActorID:    m.ActorID,
		Payload:    json.RawMessage(m.Payload),
		OccurredAt: m.OccurredAt,
		CreatedAt:  m.CreatedAt,
	}
}

// AuditLogModelFromDomain creates a persistence model from a domain Entry
func AuditLogModelFromDomain(e *audit.Entry) *AuditLogModel {
	return &AuditLogModel{
		ID:         e.ID,
		OrgID:      e.OrgID,
		EventID:    e.EventID,
		EventType:  e.EventType,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		ActorID:    e.ActorID,
		Payload:    []byte(e.Payload),
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
	}
}
