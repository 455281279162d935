package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockOutboxRepository keeps entries in memory
type mockOutboxRepository struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]*shared.OutboxEntry
	findErr  error
	deleted  int64
	cutoffAt time.Time
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *mockOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *mockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	return r.find(limit, func(e *shared.OutboxEntry) bool {
		return e.Status == shared.OutboxStatusPending
	})
}

func (r *mockOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	return r.find(limit, func(e *shared.OutboxEntry) bool {
		return e.Status == shared.OutboxStatusFailed && e.NextRetryAt != nil && !e.NextRetryAt.After(before)
	})
}

func (r *mockOutboxRepository) find(limit int, match func(*shared.OutboxEntry) bool) ([]*shared.OutboxEntry, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if match(e) {
			c := *e
			result = append(result, &c)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (r *mockOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	dead, err := r.find(pageSize, func(e *shared.OutboxEntry) bool { return e.IsDead() })
	return dead, int64(len(dead)), err
}

func (r *mockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, shared.NewNotFoundError("outbox entry")
	}
	c := *e
	return &c, nil
}

func (r *mockOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEntry
	for _, id := range ids {
		e, ok := r.entries[id]
		if !ok || e.MarkProcessing() != nil {
			continue
		}
		c := *e
		result = append(result, &c)
	}
	return result, nil
}

func (r *mockOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *entry
	r.entries[entry.ID] = &c
	return nil
}

func (r *mockOutboxRepository) DeleteSentOlderThan(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoffAt = before
	for id, e := range r.entries {
		if e.Status == shared.OutboxStatusSent && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.entries, id)
			r.deleted++
		}
	}
	return r.deleted, nil
}

func (r *mockOutboxRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.entries[id]; ok {
			delete(r.entries, id)
			n++
		}
	}
	return n, nil
}

func (r *mockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (r *mockOutboxRepository) get(id uuid.UUID) *shared.OutboxEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id]
}

// recordingObserver captures delivery outcomes
type recordingObserver struct {
	mu        sync.Mutex
	delivered []string
	failed    []string
	dead      []string
}

func (o *recordingObserver) TaskDelivered(_ context.Context, task string, err error, dead bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case dead:
		o.dead = append(o.dead, task)
	case err != nil:
		o.failed = append(o.failed, task)
	default:
		o.delivered = append(o.delivered, task)
	}
}

type processorFixture struct {
	repo      *mockOutboxRepository
	registry  *HandlerRegistry
	processor *OutboxProcessor
	observer  *recordingObserver
	publisher *OutboxPublisher
}

func newProcessorFixture(handlers ...shared.EventHandler) *processorFixture {
	s := NewEventSerializer()
	RegisterAllEvents(s)

	registry := NewHandlerRegistry()
	registry.Register(handlers...)

	repo := newMockOutboxRepository()
	observer := &recordingObserver{}
	config := DefaultOutboxProcessorConfig()
	config.BatchSize = 10

	return &processorFixture{
		repo:      repo,
		registry:  registry,
		processor: NewOutboxProcessor(repo, registry, s, config, zap.NewNop()).WithObserver(observer),
		observer:  observer,
		publisher: NewOutboxPublisher(s, testRouter(), 2),
	}
}

func (f *processorFixture) enqueue(t *testing.T, events ...shared.DomainEvent) []*shared.OutboxEntry {
	t.Helper()
	entries, err := f.publisher.Entries(events...)
	require.NoError(t, err)
	require.NoError(t, f.repo.Save(context.Background(), entries...))
	return entries
}

func TestOutboxProcessor_DeliversEachTask(t *testing.T) {
	audit := testutil.NewMockEventHandler(shared.TaskAuditLog)
	notify := testutil.NewMockEventHandler(shared.TaskNotification)
	f := newProcessorFixture(audit, notify)

	evt := newRecordedEvent()
	entries := f.enqueue(t, evt)

	n := f.processor.ProcessBatch(context.Background())
	assert.Equal(t, 2, n)

	require.Equal(t, 1, audit.HandledCount())
	require.Equal(t, 1, notify.HandledCount())
	delivered, ok := audit.Handled()[0].(*payment.PaymentRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, evt.EventID(), delivered.EventID())

	for _, e := range entries {
		stored := f.repo.get(e.ID)
		assert.Equal(t, shared.OutboxStatusSent, stored.Status)
		assert.NotNil(t, stored.ProcessedAt)
	}
	assert.ElementsMatch(t, []string{shared.TaskAuditLog, shared.TaskNotification}, f.observer.delivered)
}

func TestOutboxProcessor_FailureIsolatedPerTask(t *testing.T) {
	audit := testutil.NewMockEventHandler(shared.TaskAuditLog)
	notify := testutil.NewMockEventHandler(shared.TaskNotification)
	notify.SetError(errors.New("relay down"))
	f := newProcessorFixture(audit, notify)

	entries := f.enqueue(t, newRecordedEvent())
	f.processor.ProcessBatch(context.Background())

	for _, e := range entries {
		stored := f.repo.get(e.ID)
		switch e.Task {
		case shared.TaskAuditLog:
			assert.Equal(t, shared.OutboxStatusSent, stored.Status)
		case shared.TaskNotification:
			assert.Equal(t, shared.OutboxStatusFailed, stored.Status)
			assert.Equal(t, 1, stored.RetryCount)
			assert.Equal(t, "relay down", stored.LastError)
			assert.NotNil(t, stored.NextRetryAt)
		}
	}
	assert.Equal(t, []string{shared.TaskNotification}, f.observer.failed)
}

func TestOutboxProcessor_DeadLetterAfterMaxRetries(t *testing.T) {
	audit := testutil.NewMockEventHandler(shared.TaskAuditLog)
	audit.SetError(errors.New("audit store unavailable"))
	f := newProcessorFixture(audit)

	batch := &payment.BatchCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(payment.EventTypeBatchCompleted, payment.AggregateTypeBatch, uuid.New(), uuid.New()),
	}
	entries := f.enqueue(t, batch)
	require.Len(t, entries, 1)
	id := entries[0].ID

	ctx := context.Background()
	f.processor.ProcessBatch(ctx)
	require.Equal(t, shared.OutboxStatusFailed, f.repo.get(id).Status)

	// make the backoff elapse
	past := shared.Now().Add(-time.Second)
	stored := f.repo.get(id)
	stored.NextRetryAt = &past

	f.processor.ProcessBatch(ctx)
	final := f.repo.get(id)
	assert.Equal(t, shared.OutboxStatusDead, final.Status)
	assert.Equal(t, 2, final.RetryCount)
	assert.Equal(t, []string{shared.TaskAuditLog}, f.observer.dead)
	assert.Equal(t, 2, audit.HandledCount())
}

func TestOutboxProcessor_MissingHandlerFails(t *testing.T) {
	f := newProcessorFixture(testutil.NewMockEventHandler(shared.TaskAuditLog))

	entries := f.enqueue(t, newRecordedEvent())
	f.processor.ProcessBatch(context.Background())

	for _, e := range entries {
		stored := f.repo.get(e.ID)
		if e.Task == shared.TaskNotification {
			assert.Equal(t, shared.OutboxStatusFailed, stored.Status)
			assert.Contains(t, stored.LastError, "no handler registered")
		}
	}
}

func TestOutboxProcessor_FindErrorClaimsNothing(t *testing.T) {
	f := newProcessorFixture()
	f.repo.findErr = errors.New("connection refused")

	assert.Zero(t, f.processor.ProcessBatch(context.Background()))
}

func TestOutboxProcessor_Cleanup(t *testing.T) {
	f := newProcessorFixture(testutil.NewMockEventHandler(shared.TaskAuditLog))

	e := newEntry(shared.TaskAuditLog)
	e.MarkSent()
	old := shared.Now().Add(-30 * 24 * time.Hour)
	e.ProcessedAt = &old
	require.NoError(t, f.repo.Save(context.Background(), e))

	f.processor.Cleanup(context.Background())

	assert.Nil(t, f.repo.get(e.ID))
	assert.WithinDuration(t, shared.Now().Add(-7*24*time.Hour), f.repo.cutoffAt, time.Minute)
}

func TestOutboxProcessor_StartStop(t *testing.T) {
	audit := testutil.NewMockEventHandler(shared.TaskAuditLog)
	f := newProcessorFixture(audit)
	f.processor.config.PollInterval = 10 * time.Millisecond

	batch := &payment.BatchCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(payment.EventTypeBatchCompleted, payment.AggregateTypeBatch, uuid.New(), uuid.New()),
	}
	f.enqueue(t, batch)

	require.NoError(t, f.processor.Start(context.Background()))
	testutil.RequireEventually(t, func() bool { return audit.HandledCount() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, f.processor.Stop(ctx))
}
