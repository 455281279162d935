package event

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memQueue keeps fan-out tasks in memory, oldest first
type memQueue struct {
	tasks map[uuid.UUID]*shared.OutboxEntry
}

func newMemQueue(entries ...*shared.OutboxEntry) *memQueue {
	q := &memQueue{tasks: make(map[uuid.UUID]*shared.OutboxEntry)}
	_ = q.Save(context.Background(), entries...)
	return q
}

func (q *memQueue) withStatus(status shared.OutboxStatus) []*shared.OutboxEntry {
	var out []*shared.OutboxEntry
	for _, e := range q.tasks {
		if e.Status == status {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *shared.OutboxEntry) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

func (q *memQueue) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	for _, e := range entries {
		q.tasks[e.ID] = e
	}
	return nil
}

func (q *memQueue) FindPending(_ context.Context, limit int) ([]*shared.OutboxEntry, error) {
	pending := q.withStatus(shared.OutboxStatusPending)
	return pending[:min(limit, len(pending))], nil
}

func (q *memQueue) FindRetryable(context.Context, time.Time, int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (q *memQueue) FindDead(_ context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	dead := q.withStatus(shared.OutboxStatusDead)
	from := min((page-1)*pageSize, len(dead))
	to := min(from+pageSize, len(dead))
	return dead[from:to], int64(len(dead)), nil
}

func (q *memQueue) FindByID(_ context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	return q.tasks[id], nil
}

func (q *memQueue) MarkProcessing(context.Context, []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (q *memQueue) Update(_ context.Context, entry *shared.OutboxEntry) error {
	q.tasks[entry.ID] = entry
	return nil
}

func (q *memQueue) DeleteSentOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (q *memQueue) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	for _, id := range ids {
		delete(q.tasks, id)
	}
	return int64(len(ids)), nil
}

func (q *memQueue) CountByStatus(context.Context) (map[shared.OutboxStatus]int64, error) {
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range q.tasks {
		counts[e.Status]++
	}
	return counts, nil
}

// exhausted builds a notification task for a recorded payment that ran out of attempts
func exhausted(age time.Duration) *shared.OutboxEntry {
	at := time.Now().Add(-age)
	return &shared.OutboxEntry{
		ID:            uuid.New(),
		OrgID:         uuid.New(),
		EventID:       uuid.New(),
		EventType:     "payment.recorded",
		Task:          shared.TaskNotification,
		AggregateID:   uuid.New(),
		AggregateType: "Payment",
		Status:        shared.OutboxStatusDead,
		RetryCount:    shared.DefaultMaxRetries,
		MaxRetries:    shared.DefaultMaxRetries,
		LastError:     "mailer rejected recipient",
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func queued(status shared.OutboxStatus) *shared.OutboxEntry {
	return &shared.OutboxEntry{ID: uuid.New(), Status: status, Task: shared.TaskAuditLog, CreatedAt: time.Now()}
}

func TestOutboxService_DeadLetters(t *testing.T) {
	q := newMemQueue(queued(shared.OutboxStatusPending), queued(shared.OutboxStatusSent))
	for i := range 5 {
		require.NoError(t, q.Save(context.Background(), exhausted(time.Duration(5-i)*time.Hour)))
	}
	svc := NewOutboxService(q, zap.NewNop())

	page, err := svc.DeadLetters(context.Background(), shared.Filter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	for _, task := range page.Items {
		assert.Equal(t, "DEAD", task.Status)
		assert.Equal(t, shared.DefaultMaxRetries, task.Attempts)
		assert.Equal(t, "mailer rejected recipient", task.LastError)
	}

	page, err = svc.DeadLetters(context.Background(), shared.Filter{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, retryAllBatch, page.PageSize, "page size is capped")
	assert.Len(t, page.Items, 5)
}

func TestOutboxService_Redeliver(t *testing.T) {
	dead := exhausted(time.Hour)
	pending := queued(shared.OutboxStatusPending)
	svc := NewOutboxService(newMemQueue(dead, pending), zap.NewNop())
	ctx := context.Background()

	t.Run("dead letter goes back to pending", func(t *testing.T) {
		task, err := svc.Redeliver(ctx, dead.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", task.Status)
		assert.Zero(t, task.Attempts)
		assert.Empty(t, task.LastError)

		loaded, err := svc.Task(ctx, dead.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", loaded.Status)
	})

	t.Run("live task is rejected", func(t *testing.T) {
		_, err := svc.Redeliver(ctx, pending.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "status", de.Field)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := svc.Redeliver(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = svc.Task(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOutboxService_RedeliverAll_SpansSeveralBatches(t *testing.T) {
	q := newMemQueue(queued(shared.OutboxStatusSent))
	for i := range retryAllBatch + 30 {
		require.NoError(t, q.Save(context.Background(), exhausted(time.Duration(i)*time.Minute)))
	}
	svc := NewOutboxService(q, zap.NewNop())

	n, err := svc.RedeliverAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(retryAllBatch+30), n)
	assert.Empty(t, q.withStatus(shared.OutboxStatusDead))
	assert.Len(t, q.withStatus(shared.OutboxStatusPending), retryAllBatch+30)

	n, err = svc.RedeliverAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "nothing left to requeue")
}

func TestOutboxService_Stats(t *testing.T) {
	q := newMemQueue()
	mix := map[shared.OutboxStatus]int{
		shared.OutboxStatusPending:    3,
		shared.OutboxStatusProcessing: 1,
		shared.OutboxStatusSent:       4,
		shared.OutboxStatusFailed:     2,
		shared.OutboxStatusDead:       1,
	}
	for status, n := range mix {
		for range n {
			require.NoError(t, q.Save(context.Background(), queued(status)))
		}
	}

	stats, err := NewOutboxService(q, zap.NewNop()).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, QueueStats{Pending: 3, Processing: 1, Sent: 4, Failed: 2, Dead: 1, Total: 11}, stats)
	assert.Equal(t, int64(6), stats.Backlog())
}
