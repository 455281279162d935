package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(task string) *shared.OutboxEntry {
	evt := testutil.NewTestEvent("payment.recorded", testutil.TestOrgID())
	return shared.NewOutboxEntry(evt, task, []byte(`{}`))
}

func TestGormOutboxRepository_SaveAndFind(t *testing.T) {
	repo := NewGormOutboxRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	a := newEntry(shared.TaskAuditLog)
	b := newEntry(shared.TaskNotification)
	require.NoError(t, repo.Save(ctx, a, b))

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.EventID, got.EventID)
	assert.Equal(t, shared.TaskAuditLog, got.Task)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOutboxRepository_SaveSkipsDuplicateTask(t *testing.T) {
	repo := NewGormOutboxRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	a := newEntry(shared.TaskAuditLog)
	require.NoError(t, repo.Save(ctx, a))

	dup := *a
	dup.ID = uuid.New()
	require.NoError(t, repo.Save(ctx, &dup))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusPending])
}

func TestGormOutboxRepository_MarkProcessing(t *testing.T) {
	repo := NewGormOutboxRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	a := newEntry(shared.TaskAuditLog)
	require.NoError(t, repo.Save(ctx, a))

	claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{a.ID})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, shared.OutboxStatusProcessing, claimed[0].Status)

	again, err := repo.MarkProcessing(ctx, []uuid.UUID{a.ID})
	require.NoError(t, err)
	assert.Empty(t, again, "an entry already being processed cannot be claimed twice")
}

func TestGormOutboxRepository_RetryAndDeadLetter(t *testing.T) {
	repo := NewGormOutboxRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	e := newEntry(shared.TaskNotification)
	e.MaxRetries = 2
	require.NoError(t, repo.Save(ctx, e))

	e.MarkFailed("relay down")
	require.NoError(t, repo.Update(ctx, e))

	retryable, err := repo.FindRetryable(ctx, shared.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, retryable, 1)
	assert.Equal(t, 1, retryable[0].RetryCount)

	notYet, err := repo.FindRetryable(ctx, shared.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, notYet)

	e.MarkFailed("relay down")
	require.True(t, e.IsDead())
	require.NoError(t, repo.Update(ctx, e))

	dead, total, err := repo.FindDead(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, dead, 1)
	assert.Equal(t, "relay down", dead[0].LastError)

	deleted, err := repo.DeleteByIDs(ctx, []uuid.UUID{e.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestGormOutboxRepository_DeleteSentOlderThan(t *testing.T) {
	repo := NewGormOutboxRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	old := newEntry(shared.TaskAuditLog)
	recent := newEntry(shared.TaskAuditLog)
	require.NoError(t, repo.Save(ctx, old, recent))

	old.MarkSent()
	past := shared.Now().Add(-48 * time.Hour)
	old.ProcessedAt = &past
	require.NoError(t, repo.Update(ctx, old))
	recent.MarkSent()
	require.NoError(t, repo.Update(ctx, recent))

	deleted, err := repo.DeleteSentOlderThan(ctx, shared.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusSent])
}
