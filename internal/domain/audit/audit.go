package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
)

// Entry is an immutable audit log record of one committed domain event
type Entry struct {
	ID         uuid.UUID
	OrgID      uuid.UUID
	EventID    uuid.UUID
	EventType  string
	EntityType string
	EntityID   uuid.UUID
	ActorID    *uuid.UUID
	Payload    json.RawMessage
	OccurredAt time.Time
	CreatedAt  time.Time
}

// NewEntry builds an audit entry from an event and its serialized payload
func NewEntry(event shared.DomainEvent, payload []byte) *Entry {
	e := &Entry{
		ID:         uuid.New(),
		OrgID:      event.OrgID(),
		EventID:    event.EventID(),
		EventType:  event.EventType(),
		EntityType: event.AggregateType(),
		EntityID:   event.AggregateID(),
		Payload:    json.RawMessage(payload),
		OccurredAt: event.OccurredAt(),
		CreatedAt:  shared.Now(),
	}
	if actor := event.ActorID(); actor != uuid.Nil {
		e.ActorID = &actor
	}
	return e
}

// Repository persists audit entries
type Repository interface {
	// Append inserts an entry. Appending the same event twice is a no-op.
	Append(ctx context.Context, e *Entry) error
	// ListByEntity lists entries of one entity, newest first
	ListByEntity(ctx context.Context, orgID uuid.UUID, entityType string, entityID uuid.UUID, filter shared.Filter) ([]Entry, int64, error)
}
