package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OutboxProcessorConfig holds configuration for the outbox processor
type OutboxProcessorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultOutboxProcessorConfig returns default configuration
func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     2 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// DeliveryObserver is told about every task delivery attempt
type DeliveryObserver interface {
	TaskDelivered(ctx context.Context, task string, err error, dead bool)
}

// OutboxProcessor delivers outbox tasks in the background. Each entry is routed to
// the handler registered for its task; failures are rescheduled with backoff and
// dead-lettered once MaxRetries is reached. Delivery errors never reach the caller
// that produced the event.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	registry   *HandlerRegistry
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger
	observer   DeliveryObserver

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxProcessor creates a new outbox processor
func NewOutboxProcessor(
	repo shared.OutboxRepository,
	registry *HandlerRegistry,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:       repo,
		registry:   registry,
		serializer: serializer,
		config:     config,
		logger:     logger,
	}
}

// WithObserver attaches a delivery observer (metrics)
func (p *OutboxProcessor) WithObserver(o DeliveryObserver) *OutboxProcessor {
	p.observer = o
	return p
}

// Start starts the background loops
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.processLoop(ctx)

	if p.config.CleanupEnabled {
		p.wg.Add(1)
		go p.cleanupLoop(ctx)
	}

	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Strings("tasks", p.registry.Tasks()),
	)
	return nil
}

// Stop gracefully stops the processor
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) processLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch delivers one batch of pending entries and one of retryable entries.
// It returns the number of entries this worker claimed.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) int {
	processed := 0

	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find pending entries", zap.Error(err))
		return processed
	}
	processed += p.processEntries(ctx, pending)

	retryable, err := p.repo.FindRetryable(ctx, shared.Now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find retryable entries", zap.Error(err))
		return processed
	}
	processed += p.processEntries(ctx, retryable)
	return processed
}

func (p *OutboxProcessor) processEntries(ctx context.Context, entries []*shared.OutboxEntry) int {
	if len(entries) == 0 {
		return 0
	}
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("failed to mark entries as processing", zap.Error(err))
		return 0
	}
	for _, entry := range claimed {
		p.processEntry(ctx, entry)
	}
	return len(claimed)
}

func (p *OutboxProcessor) processEntry(ctx context.Context, entry *shared.OutboxEntry) {
	err := p.deliver(ctx, entry)
	if err != nil {
		entry.MarkFailed(err.Error())
		if entry.IsDead() {
			p.logger.Warn("outbox task moved to dead letter queue",
				zap.String("event_id", entry.EventID.String()),
				zap.String("event_type", entry.EventType),
				zap.String("task", entry.Task),
				zap.String("aggregate_id", entry.AggregateID.String()),
				zap.Int("retry_count", entry.RetryCount),
				zap.String("last_error", entry.LastError),
			)
		} else {
			p.logger.Warn("outbox task failed",
				zap.String("event_id", entry.EventID.String()),
				zap.String("task", entry.Task),
				zap.Int("retry_count", entry.RetryCount),
				zap.Error(err),
			)
		}
	} else {
		entry.MarkSent()
	}

	if p.observer != nil {
		p.observer.TaskDelivered(ctx, entry.Task, err, entry.IsDead())
	}
	if updateErr := p.repo.Update(ctx, entry); updateErr != nil {
		p.logger.Error("failed to update outbox entry",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(updateErr),
		)
	}
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) error {
	handler, ok := p.registry.Handler(entry.Task)
	if !ok {
		return fmt.Errorf("no handler registered for task %s", entry.Task)
	}
	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		return err
	}
	return handler.Handle(ctx, event)
}

func (p *OutboxProcessor) cleanupLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Cleanup(ctx)
		}
	}
}

// Cleanup removes delivered entries older than the retention period
func (p *OutboxProcessor) Cleanup(ctx context.Context) {
	cutoff := shared.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteSentOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to cleanup old entries", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Info("cleaned up old outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
