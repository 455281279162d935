package handler

import (
	"github.com/gin-gonic/gin"
	propertyapp "github.com/propcore/backend/internal/application/property"
)

// PropertyHandler handles property endpoints
type PropertyHandler struct {
	BaseHandler
	propertyService *propertyapp.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyService *propertyapp.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// Create handles POST /properties
func (h *PropertyHandler) Create(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	var req propertyapp.CreatePropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), orgID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, property)
}

// List handles GET /properties
func (h *PropertyHandler) List(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	filter, ok := h.pageFilter(c)
	if !ok {
		return
	}

	page, err := h.propertyService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetByID handles GET /properties/:id, returning the property with its units
func (h *PropertyHandler) GetByID(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	property, err := h.propertyService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, property)
}

// CashFlow handles GET /properties/:id/cash-flow
func (h *PropertyHandler) CashFlow(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	cashFlow, err := h.propertyService.GetCashFlow(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cashFlow)
}

// AddUnits handles POST /properties/:id/units
func (h *PropertyHandler) AddUnits(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req propertyapp.AddUnitsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.AddUnits(c.Request.Context(), orgID, actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, property)
}

// Archive handles POST /properties/:id/archive
func (h *PropertyHandler) Archive(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	property, err := h.propertyService.Archive(c.Request.Context(), orgID, actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, property)
}
