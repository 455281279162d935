package handler

import (
	"github.com/gin-gonic/gin"
	propertyapp "github.com/propcore/backend/internal/application/property"
)

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService *propertyapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *propertyapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// Record handles POST /expenses
func (h *ExpenseHandler) Record(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	var req propertyapp.RecordExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Record(c.Request.Context(), orgID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// GetByID handles GET /expenses/:id
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	expense, err := h.expenseService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Void handles POST /expenses/:id/void
func (h *ExpenseHandler) Void(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req propertyapp.VoidExpenseRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Void(c.Request.Context(), orgID, actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}
