package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	OrgID() uuid.UUID
	// ActorID is the user the routing layer attributed the mutation to (may be uuid.Nil)
	ActorID() uuid.UUID
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	AggID      uuid.UUID `json:"aggregate_id"`
	AggType    string    `json:"aggregate_type"`
	OrgIDValue uuid.UUID `json:"org_id"`
	Actor      uuid.UUID `json:"actor_id"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() uuid.UUID {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// OrgID returns the organization the event belongs to
func (e *BaseDomainEvent) OrgID() uuid.UUID {
	return e.OrgIDValue
}

// ActorID returns the acting user
func (e *BaseDomainEvent) ActorID() uuid.UUID {
	return e.Actor
}

// SetActor records the acting user on the event
func (e *BaseDomainEvent) SetActor(actorID uuid.UUID) {
	e.Actor = actorID
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, aggType string, aggID, orgID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Timestamp:  Now(),
		AggID:      aggID,
		AggType:    aggType,
		OrgIDValue: orgID,
	}
}

// ActorSetter is implemented by every event embedding BaseDomainEvent
type ActorSetter interface {
	SetActor(actorID uuid.UUID)
}

// StampActor sets actorID on every event that accepts one
func StampActor(actorID uuid.UUID, events ...DomainEvent) {
	for _, e := range events {
		if s, ok := e.(ActorSetter); ok {
			s.SetActor(actorID)
		}
	}
}
