package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
)

// OutboxTaskModel stores one (event, task) delivery. Rows are written in the
// same transaction as the aggregates that raised the event; uq_outbox_event_task
// keeps a re-published event from queueing a task twice.
type OutboxTaskModel struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrgID uuid.UUID `gorm:"type:uuid;not null;index:idx_outbox_org_status,priority:1"`

	// event being delivered
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_outbox_event_task,priority:1"`
	EventType     string    `gorm:"type:varchar(255);not null"`
	AggregateType string    `gorm:"type:varchar(255);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`

	// delivery state of the task
	Task        string              `gorm:"type:varchar(50);not null;uniqueIndex:uq_outbox_event_task,priority:2"`
	Status      shared.OutboxStatus `gorm:"type:varchar(20);default:PENDING;index:idx_outbox_org_status,priority:2;index:idx_outbox_status_created,priority:1"`
	Attempts    int                 `gorm:"column:retry_count;default:0"`
	MaxAttempts int                 `gorm:"column:max_retries;default:5"`
	LastError   string              `gorm:"type:text"`
	NextRetryAt *time.Time          `gorm:"index:idx_outbox_next_retry"`
	DeliveredAt *time.Time          `gorm:"column:processed_at"`

	CreatedAt time.Time `gorm:"not null;index:idx_outbox_status_created,priority:2"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OutboxTaskModel) TableName() string {
	return "outbox_events"
}

// NewOutboxTaskModel maps a queued task onto its row
func NewOutboxTaskModel(e *shared.OutboxEntry) *OutboxTaskModel {
	return &OutboxTaskModel{
		ID:            e.ID,
		OrgID:         e.OrgID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Payload:       e.Payload,
		Task:          e.Task,
		Status:        e.Status,
		Attempts:      e.RetryCount,
		MaxAttempts:   e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		DeliveredAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ToDomain converts the row back to an outbox entry
func (m *OutboxTaskModel) ToDomain() *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:            m.ID,
		OrgID:         m.OrgID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateType: m.AggregateType,
		AggregateID:   m.AggregateID,
		Payload:       m.Payload,
		Task:          m.Task,
		Status:        m.Status,
		RetryCount:    m.Attempts,
		MaxRetries:    m.MaxAttempts,
		LastError:     m.LastError,
		NextRetryAt:   m.NextRetryAt,
		ProcessedAt:   m.DeliveredAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
