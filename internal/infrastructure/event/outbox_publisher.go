package event

import (
	"context"

	"github.com/propcore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// TaskRouter resolves the fan-out tasks of an event type
type TaskRouter interface {
	TasksFor(eventType string) []string
}

// OutboxPublisher writes one outbox entry per (event, task) inside the caller's transaction
type OutboxPublisher struct {
	serializer *EventSerializer
	router     TaskRouter
	maxRetries int
}

// NewOutboxPublisher creates a new outbox publisher. maxRetries <= 0 keeps the default.
func NewOutboxPublisher(serializer *EventSerializer, router TaskRouter, maxRetries int) *OutboxPublisher {
	if maxRetries <= 0 {
		maxRetries = shared.DefaultMaxRetries
	}
	return &OutboxPublisher{
		serializer: serializer,
		router:     router,
		maxRetries: maxRetries,
	}
}

// Entries builds the outbox entries for events. Events without fan-out produce none.
func (p *OutboxPublisher) Entries(events ...shared.DomainEvent) ([]*shared.OutboxEntry, error) {
	var entries []*shared.OutboxEntry
	for _, event := range events {
		tasks := p.router.TasksFor(event.EventType())
		if len(tasks) == 0 {
			continue
		}
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			entry := shared.NewOutboxEntry(event, task, payload)
			entry.MaxRetries = p.maxRetries
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// PublishWithTx persists the fan-out tasks of events within tx, so they commit
// or roll back together with the aggregate changes that raised them
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	entries, err := p.Entries(events...)
	if err != nil || len(entries) == 0 {
		return err
	}
	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// Writer binds the publisher to a transaction as a shared.OutboxWriter
func (p *OutboxPublisher) Writer(tx *gorm.DB) shared.OutboxWriter {
	return &txOutboxWriter{publisher: p, tx: tx}
}

type txOutboxWriter struct {
	publisher *OutboxPublisher
	tx        *gorm.DB
}

func (w *txOutboxWriter) Enqueue(ctx context.Context, events ...shared.DomainEvent) error {
	return w.publisher.PublishWithTx(ctx, w.tx, events...)
}
