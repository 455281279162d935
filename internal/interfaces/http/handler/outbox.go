package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/propcore/backend/internal/application/event"
)

// OutboxHandler exposes the fan-out queue to administrators
type OutboxHandler struct {
	BaseHandler
	outbox *event.OutboxService
}

// NewOutboxHandler creates a new outbox handler
func NewOutboxHandler(outbox *event.OutboxService) *OutboxHandler {
	return &OutboxHandler{outbox: outbox}
}

// RedeliverAllResponse reports how many dead letters went back to pending
type RedeliverAllResponse struct {
	Count int64 `json:"count"`
}

// Stats handles GET /admin/outbox/stats
func (h *OutboxHandler) Stats(c *gin.Context) {
	stats, err := h.outbox.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// DeadLetters handles GET /admin/outbox/dead
func (h *OutboxHandler) DeadLetters(c *gin.Context) {
	filter, ok := h.pageFilter(c)
	if !ok {
		return
	}
	page, err := h.outbox.DeadLetters(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Task handles GET /admin/outbox/:id
func (h *OutboxHandler) Task(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.outbox.Task(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// Redeliver handles POST /admin/outbox/:id/retry
func (h *OutboxHandler) Redeliver(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.outbox.Redeliver(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// RedeliverAll handles POST /admin/outbox/retry-all
func (h *OutboxHandler) RedeliverAll(c *gin.Context) {
	count, err := h.outbox.RedeliverAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RedeliverAllResponse{Count: count})
}
