package shared

import "context"

// Fan-out task names. Each names one best-effort side effect that follows a
// committed domain event.
const (
	TaskAuditLog       = "audit_log"
	TaskNotification   = "notification"
	TaskReminderCreate = "reminder_create"
)

// EventHandler performs a single fan-out task for a domain event.
// Handlers must tolerate redelivery: the outbox guarantees at-least-once.
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// Task returns the fan-out task this handler performs
	Task() string
}

// OutboxWriter enqueues the fan-out tasks of domain events inside the current unit of work
type OutboxWriter interface {
	Enqueue(ctx context.Context, events ...DomainEvent) error
}
