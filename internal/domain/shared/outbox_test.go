package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	BaseDomainEvent
}

func TestNewOutboxEntry(t *testing.T) {
	orgID := uuid.New()
	aggID := uuid.New()
	evt := &testEvent{BaseDomainEvent: NewBaseDomainEvent("payment.recorded", "Payment", aggID, orgID)}

	entry := NewOutboxEntry(evt, TaskAuditLog, []byte(`{}`))

	assert.Equal(t, orgID, entry.OrgID)
	assert.Equal(t, evt.EventID(), entry.EventID)
	assert.Equal(t, "payment.recorded", entry.EventType)
	assert.Equal(t, TaskAuditLog, entry.Task)
	assert.Equal(t, aggID, entry.AggregateID)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
	assert.Equal(t, TaskAuditLog+":"+evt.EventID().String(), entry.DeliveryKey())
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusFailed} {
		entry := &OutboxEntry{Status: status}
		require.NoError(t, entry.MarkProcessing())
		assert.Equal(t, OutboxStatusProcessing, entry.Status)
	}

	for _, status := range []OutboxStatus{OutboxStatusProcessing, OutboxStatusSent, OutboxStatusDead} {
		entry := &OutboxEntry{Status: status}
		assert.Error(t, entry.MarkProcessing())
	}
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("resets dead letter entry for retry", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			Task:       TaskNotification,
			Status:     OutboxStatusDead,
			RetryCount: 5,
			MaxRetries: 5,
			LastError:  "smtp relay down",
			UpdatedAt:  time.Now().Add(-time.Minute),
		}

		err := entry.ResetForRetry()
		assert.NoError(t, err)
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
		assert.True(t, entry.UpdatedAt.After(time.Now().Add(-time.Second)))
	})

	t.Run("fails for non-dead entry", func(t *testing.T) {
		for _, status := range []OutboxStatus{
			OutboxStatusPending,
			OutboxStatusProcessing,
			OutboxStatusSent,
			OutboxStatusFailed,
		} {
			entry := &OutboxEntry{ID: uuid.New(), Status: status}
			err := entry.ResetForRetry()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "can only retry dead letter entries")
		}
	})
}

func TestOutboxEntry_MarkFailed_MovesToDeadAfterMaxRetries(t *testing.T) {
	entry := &OutboxEntry{
		ID:         uuid.New(),
		Status:     OutboxStatusProcessing,
		RetryCount: 4,
		MaxRetries: 5,
	}

	entry.MarkFailed("final error")

	assert.Equal(t, OutboxStatusDead, entry.Status)
	assert.Equal(t, 5, entry.RetryCount)
	assert.Equal(t, "final error", entry.LastError)
	assert.Nil(t, entry.NextRetryAt)
	assert.True(t, entry.IsDead())
	assert.False(t, entry.CanRetry())
}

func TestOutboxEntry_MarkFailed_ExponentialBackoff(t *testing.T) {
	entry := &OutboxEntry{
		ID:         uuid.New(),
		Status:     OutboxStatusProcessing,
		MaxRetries: 5,
	}

	entry.MarkFailed("error 1")
	assert.Equal(t, OutboxStatusFailed, entry.Status)
	assert.True(t, entry.CanRetry())
	assert.Equal(t, time.Second, entry.NextRetryAt.Sub(entry.UpdatedAt))

	entry.Status = OutboxStatusProcessing
	entry.MarkFailed("error 2")
	assert.Equal(t, 2*time.Second, entry.NextRetryAt.Sub(entry.UpdatedAt))

	entry.Status = OutboxStatusProcessing
	entry.MarkFailed("error 3")
	assert.Equal(t, 3, entry.RetryCount)
	assert.Equal(t, 4*time.Second, entry.NextRetryAt.Sub(entry.UpdatedAt))
}

func TestOutboxEntry_MarkFailed_CapsBackoff(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing, RetryCount: 20, MaxRetries: 30}

	entry.MarkFailed("still failing")

	assert.Equal(t, MaxBackoff, entry.NextRetryAt.Sub(entry.UpdatedAt))
}
