package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch bumps UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Now returns the current time in UTC. All persisted timestamps go through it so
// that stored values compare correctly regardless of the server's zone.
func Now() time.Time {
	return time.Now().UTC()
}

// Lifecycle is the archival state of a record. It is orthogonal to any business status.
type Lifecycle string

const (
	LifecycleLive     Lifecycle = "LIVE"
	LifecycleArchived Lifecycle = "ARCHIVED"
)

// IsValid checks if the lifecycle is valid
func (l Lifecycle) IsValid() bool {
	return l == LifecycleLive || l == LifecycleArchived
}
