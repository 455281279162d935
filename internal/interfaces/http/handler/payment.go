package handler

import (
	"github.com/gin-gonic/gin"
	paymentapp "github.com/propcore/backend/internal/application/payment"
)

// PaymentHandler handles payment and bulk payment batch endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
	batchService   *paymentapp.BatchService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.PaymentService, batchService *paymentapp.BatchService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		batchService:   batchService,
	}
}

// Record handles POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	var req paymentapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Record(c.Request.Context(), orgID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// GetByID handles GET /payments/:id
func (h *PaymentHandler) GetByID(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// ChangeStatus handles PATCH /payments/:id/status
func (h *PaymentHandler) ChangeStatus(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req paymentapp.ChangePaymentStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.ChangeStatus(c.Request.Context(), orgID, actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// CreateBatch handles POST /payment-batches
func (h *PaymentHandler) CreateBatch(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	var req paymentapp.CreateBatchRequest
	if !h.bindJSON(c, &req) {
		return
	}

	batch, err := h.batchService.Create(c.Request.Context(), orgID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, batch)
}

// ProcessBatch handles POST /payment-batches/:id/process
func (h *PaymentHandler) ProcessBatch(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchService.Process(c.Request.Context(), orgID, actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// GetBatch handles GET /payment-batches/:id
func (h *PaymentHandler) GetBatch(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}
