package fanout

import (
	"context"
	"fmt"

	"github.com/propcore/backend/internal/domain/audit"
	"github.com/propcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EventEncoder turns an event into the payload stored with its audit entry
type EventEncoder interface {
	Serialize(event shared.DomainEvent) ([]byte, error)
}

// AuditLogHandler appends one audit entry per delivered event
type AuditLogHandler struct {
	entries audit.Repository
	encoder EventEncoder
	logger  *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(entries audit.Repository, encoder EventEncoder, logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		entries: entries,
		encoder: encoder,
		logger:  logger,
	}
}

// Task returns the fan-out task this handler performs
func (h *AuditLogHandler) Task() string {
	return shared.TaskAuditLog
}

// Handle records the event. Redelivery of an already-audited event is a no-op
// in the repository.
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := h.encoder.Serialize(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s for audit: %w", event.EventType(), err)
	}
	if err := h.entries.Append(ctx, audit.NewEntry(event, payload)); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	h.logger.Debug("audit entry appended",
		zap.String("event_type", event.EventType()),
		zap.String("entity_id", event.AggregateID().String()),
	)
	return nil
}
