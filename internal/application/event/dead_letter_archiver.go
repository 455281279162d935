package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	archivePageSize  = 200
	archiveChunkSize = 500
)

// ObjectStore receives archived dead letters
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// DeadLetterArchiver moves dead fan-out tasks older than a grace period out of
// the outbox table into object storage as JSON lines. Entries are deleted only
// after their chunk was stored.
type DeadLetterArchiver struct {
	repo   shared.OutboxRepository
	store  ObjectStore
	prefix string
	grace  time.Duration
	logger *zap.Logger
}

// NewDeadLetterArchiver creates a new DeadLetterArchiver. Dead letters younger
// than grace stay in place so they can still be retried.
func NewDeadLetterArchiver(repo shared.OutboxRepository, store ObjectStore, prefix string, grace time.Duration, logger *zap.Logger) *DeadLetterArchiver {
	return &DeadLetterArchiver{
		repo:   repo,
		store:  store,
		prefix: prefix,
		grace:  grace,
		logger: logger,
	}
}

type archivedEntry struct {
	ID            uuid.UUID       `json:"id"`
	OrgID         uuid.UUID       `json:"org_id"`
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	Task          string          `json:"task"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RetryCount    int             `json:"retry_count"`
	LastError     string          `json:"last_error"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	DeadSince     time.Time       `json:"dead_since"`
}

// Archive stores and removes every eligible dead letter. It returns the number
// of entries archived.
func (a *DeadLetterArchiver) Archive(ctx context.Context) (int, error) {
	cutoff := shared.Now().Add(-a.grace)

	var eligible []*shared.OutboxEntry
	for page := 1; ; page++ {
		entries, _, err := a.repo.FindDead(ctx, page, archivePageSize)
		if err != nil {
			return 0, fmt.Errorf("failed to list dead letters: %w", err)
		}
		for _, e := range entries {
			if e.UpdatedAt.Before(cutoff) {
				eligible = append(eligible, e)
			}
		}
		if len(entries) < archivePageSize {
			break
		}
	}

	archived := 0
	for start := 0; start < len(eligible); start += archiveChunkSize {
		end := min(start+archiveChunkSize, len(eligible))
		n, err := a.archiveChunk(ctx, eligible[start:end])
		archived += n
		if err != nil {
			return archived, err
		}
	}
	if archived > 0 {
		a.logger.Info("dead letters archived", zap.Int("count", archived))
	}
	return archived, nil
}

func (a *DeadLetterArchiver) archiveChunk(ctx context.Context, entries []*shared.OutboxEntry) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		payload := json.RawMessage(e.Payload)
		if !json.Valid(payload) {
			payload, _ = json.Marshal(string(e.Payload))
		}
		if err := enc.Encode(archivedEntry{
			ID:            e.ID,
			OrgID:         e.OrgID,
			EventID:       e.EventID,
			EventType:     e.EventType,
			Task:          e.Task,
			AggregateID:   e.AggregateID,
			AggregateType: e.AggregateType,
			RetryCount:    e.RetryCount,
			LastError:     e.LastError,
			Payload:       payload,
			CreatedAt:     e.CreatedAt,
			DeadSince:     e.UpdatedAt,
		}); err != nil {
			return 0, fmt.Errorf("failed to encode dead letter %s: %w", e.ID, err)
		}
	}

	key := a.objectKey(shared.Now())
	if err := a.store.Put(ctx, key, buf.Bytes(), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("failed to store dead letters: %w", err)
	}
	deleted, err := a.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		// Stored but not deleted: the next run archives them again under a new key.
		return 0, fmt.Errorf("failed to delete archived dead letters: %w", err)
	}
	a.logger.Debug("dead letter chunk archived", zap.String("key", key), zap.Int64("deleted", deleted))
	return int(deleted), nil
}

func (a *DeadLetterArchiver) objectKey(at time.Time) string {
	return fmt.Sprintf("%s%s/%s.jsonl", a.prefix, at.UTC().Format("2006/01/02"), uuid.New())
}
