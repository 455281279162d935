package event

import (
	"context"
	"sync/atomic"

	"github.com/propcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var _ shared.EventHandler = (*IdempotentHandler)(nil)

// DedupStats counts what happened to the deliveries one handler saw
type DedupStats struct {
	Delivered int64 `json:"delivered"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}

// IdempotentHandler makes a fan-out task take effect once per event. The
// delivery key is claimed before the inner handler runs and released when it
// fails, so the outbox can redeliver.
type IdempotentHandler struct {
	inner  shared.EventHandler
	store  shared.IdempotencyStore
	config shared.IdempotencyConfig
	logger *zap.Logger

	delivered atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides the key TTL and the on/off switch
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.config = config }
}

// NewIdempotentHandler wraps inner with delivery deduplication
func NewIdempotentHandler(inner shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	h := &IdempotentHandler{
		inner:  inner,
		store:  store,
		config: shared.DefaultIdempotencyConfig(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Task returns the wrapped handler's task
func (h *IdempotentHandler) Task() string {
	return h.inner.Task()
}

// Handle runs the wrapped handler unless this task already succeeded for event
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.inner.Handle(ctx, event)
	}

	key := DeliveryKey(h.inner.Task(), event)
	if !h.claim(ctx, key, event) {
		h.skipped.Add(1)
		return nil
	}

	if err := h.inner.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		if relErr := h.store.Release(ctx, key); relErr != nil {
			h.logger.Warn("delivery key not released", zap.String("key", key), zap.Error(relErr))
		}
		return err
	}
	h.delivered.Add(1)
	return nil
}

// claim reports whether this delivery should run. A store outage lets the
// delivery through: handlers tolerate a second run, a dropped task is lost.
func (h *IdempotentHandler) claim(ctx context.Context, key string, event shared.DomainEvent) bool {
	fresh, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("idempotency store unavailable, delivering anyway",
			zap.String("key", key),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return true
	case !fresh:
		h.logger.Debug("duplicate delivery skipped",
			zap.String("key", key),
			zap.String("event_type", event.EventType()),
		)
		return false
	}
	return true
}

// Stats returns a snapshot of the delivery counters
func (h *IdempotentHandler) Stats() DedupStats {
	return DedupStats{
		Delivered: h.delivered.Load(),
		Skipped:   h.skipped.Load(),
		Failed:    h.failed.Load(),
	}
}

// DeliveryKey is the idempotency key of one task delivery for event. It
// matches OutboxEntry.DeliveryKey.
func DeliveryKey(task string, event shared.DomainEvent) string {
	return task + ":" + event.EventID().String()
}

// WrapHandlersWithIdempotency wraps every handler with delivery deduplication
func WrapHandlersWithIdempotency(handlers []shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger, opts ...IdempotentHandlerOption) []shared.EventHandler {
	wrapped := make([]shared.EventHandler, 0, len(handlers))
	for _, inner := range handlers {
		wrapped = append(wrapped, NewIdempotentHandler(inner, store, logger, opts...))
	}
	return wrapped
}
