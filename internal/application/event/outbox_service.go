package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// retryAllBatch bounds how many dead letters one RetryAll pass loads
const retryAllBatch = 100

// OutboxService is the admin surface over fan-out tasks: queue depth per
// status, the dead-letter queue and manual redelivery.
type OutboxService struct {
	repo   shared.OutboxRepository
	logger *zap.Logger
}

// NewOutboxService creates a new outbox admin service
func NewOutboxService(repo shared.OutboxRepository, logger *zap.Logger) *OutboxService {
	return &OutboxService{repo: repo, logger: logger}
}

// TaskView is the admin view of one fan-out task. The payload is left out;
// archived dead letters keep it.
type TaskView struct {
	ID            uuid.UUID  `json:"id"`
	OrgID         uuid.UUID  `json:"org_id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	Task          string     `json:"task"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	MaxAttempts   int        `json:"max_attempts"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// QueueStats counts fan-out tasks per delivery status
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// Backlog is the number of tasks still waiting for a successful delivery
func (s QueueStats) Backlog() int64 {
	return s.Pending + s.Processing + s.Failed
}

// DeadLetters pages through tasks that exhausted their retries
func (s *OutboxService) DeadLetters(ctx context.Context, filter shared.Filter) (shared.Paginated[TaskView], error) {
	filter = filter.Normalize()
	if filter.PageSize > retryAllBatch {
		filter.PageSize = retryAllBatch
	}

	entries, total, err := s.repo.FindDead(ctx, filter.Page, filter.PageSize)
	if err != nil {
		s.logger.Error("dead letter listing failed", zap.Error(err))
		return shared.Paginated[TaskView]{}, fmt.Errorf("list dead letters: %w", err)
	}

	views := make([]TaskView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, taskView(entry))
	}
	return shared.NewPaginated(views, total, filter.Page, filter.PageSize), nil
}

// Task loads one fan-out task
func (s *OutboxService) Task(ctx context.Context, id uuid.UUID) (TaskView, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return TaskView{}, err
	}
	return taskView(entry), nil
}

// Redeliver moves one dead letter back to pending with a fresh attempt budget
func (s *OutboxService) Redeliver(ctx context.Context, id uuid.UUID) (TaskView, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return TaskView{}, err
	}
	if err := entry.ResetForRetry(); err != nil {
		return TaskView{}, shared.NewDomainError(shared.CodeInvalidState, err.Error()).WithField("status")
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return TaskView{}, fmt.Errorf("requeue task %s: %w", id, err)
	}

	s.logger.Info("dead letter requeued",
		zap.String("task_id", id.String()),
		zap.String("task", entry.Task),
		zap.String("event_type", entry.EventType),
	)
	return taskView(entry), nil
}

// RedeliverAll requeues every dead letter. Requeued tasks leave the dead set,
// so each pass reads the first page again until nothing moves.
func (s *OutboxService) RedeliverAll(ctx context.Context) (int64, error) {
	var requeued int64
	for {
		batch, _, err := s.repo.FindDead(ctx, 1, retryAllBatch)
		if err != nil {
			return requeued, fmt.Errorf("list dead letters: %w", err)
		}

		moved := 0
		for _, entry := range batch {
			if entry.ResetForRetry() != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				s.logger.Warn("dead letter requeue failed",
					zap.String("task_id", entry.ID.String()), zap.Error(err))
				continue
			}
			moved++
		}
		requeued += int64(moved)

		if moved == 0 || len(batch) < retryAllBatch {
			break
		}
	}

	if requeued > 0 {
		s.logger.Info("dead letters requeued", zap.Int64("count", requeued))
	}
	return requeued, nil
}

// Stats reports the queue depth per status
func (s *OutboxService) Stats(ctx context.Context) (QueueStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return QueueStats{}, fmt.Errorf("count outbox tasks: %w", err)
	}

	stats := QueueStats{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *OutboxService) load(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	switch {
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return nil, fmt.Errorf("load task %s: %w", id, err)
	case entry == nil:
		return nil, shared.NewNotFoundError("outbox task")
	}
	return entry, nil
}

func taskView(e *shared.OutboxEntry) TaskView {
	return TaskView{
		ID:            e.ID,
		OrgID:         e.OrgID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		Task:          e.Task,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		Attempts:      e.RetryCount,
		MaxAttempts:   e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		DeliveredAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
