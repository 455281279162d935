package event

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func deadEntry(age time.Duration, payload string) *shared.OutboxEntry {
	at := time.Now().Add(-age)
	return &shared.OutboxEntry{
		ID:         uuid.New(),
		OrgID:      uuid.New(),
		EventID:    uuid.New(),
		EventType:  "payment.recorded",
		Task:       shared.TaskNotification,
		Payload:    []byte(payload),
		Status:     shared.OutboxStatusDead,
		RetryCount: 5,
		LastError:  "smtp down",
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte, string) error {
	return errors.New("bucket unavailable")
}

func TestDeadLetterArchiver_Archive(t *testing.T) {
	repo := newMemQueue()
	old := deadEntry(10*24*time.Hour, `{"amount":"100"}`)
	broken := deadEntry(9*24*time.Hour, `not json`)
	fresh := deadEntry(time.Hour, `{}`)
	require.NoError(t, repo.Save(context.Background(), old, broken, fresh))

	store := storage.NewMemoryObjectStorage()
	archiver := NewDeadLetterArchiver(repo, store, "dead-letters/", 7*24*time.Hour, zap.NewNop())

	n, err := archiver.Archive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, stillThere := repo.tasks[fresh.ID]
	assert.True(t, stillThere, "recent dead letters stay retryable")
	assert.Len(t, repo.tasks, 1)

	keys := store.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "dead-letters/"))
	assert.True(t, strings.HasSuffix(keys[0], ".jsonl"))

	data, _ := store.Get(keys[0])
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	byID := map[uuid.UUID]archivedEntry{}
	for _, line := range lines {
		var rec archivedEntry
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		byID[rec.ID] = rec
	}
	assert.JSONEq(t, `{"amount":"100"}`, string(byID[old.ID].Payload))
	assert.JSONEq(t, `"not json"`, string(byID[broken.ID].Payload))
	assert.Equal(t, "smtp down", byID[old.ID].LastError)
}

func TestDeadLetterArchiver_KeepsEntriesWhenStoreFails(t *testing.T) {
	repo := newMemQueue()
	entry := deadEntry(30*24*time.Hour, `{}`)
	require.NoError(t, repo.Save(context.Background(), entry))

	archiver := NewDeadLetterArchiver(repo, failingStore{}, "", 24*time.Hour, zap.NewNop())
	n, err := archiver.Archive(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Len(t, repo.tasks, 1)
}

func TestDeadLetterArchiver_NothingToArchive(t *testing.T) {
	repo := newMemQueue()
	store := storage.NewMemoryObjectStorage()
	archiver := NewDeadLetterArchiver(repo, store, "", time.Hour, zap.NewNop())

	n, err := archiver.Archive(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.Keys())
}
