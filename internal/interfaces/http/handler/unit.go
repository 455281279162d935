package handler

import (
	"github.com/gin-gonic/gin"
	propertyapp "github.com/propcore/backend/internal/application/property"
)

// UnitHandler handles unit endpoints
type UnitHandler struct {
	BaseHandler
	unitService *propertyapp.UnitService
}

// NewUnitHandler creates a new UnitHandler
func NewUnitHandler(unitService *propertyapp.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// GetByID handles GET /units/:id
func (h *UnitHandler) GetByID(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	unit, err := h.unitService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// ChangeStatus handles PATCH /units/:id/status
func (h *UnitHandler) ChangeStatus(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req propertyapp.ChangeUnitStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	unit, err := h.unitService.ChangeStatus(c.Request.Context(), orgID, actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// ChangeRent handles PATCH /units/:id/rent
func (h *UnitHandler) ChangeRent(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req propertyapp.ChangeUnitRentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	unit, err := h.unitService.ChangeRent(c.Request.Context(), orgID, actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// Remove handles DELETE /units/:id. Units that ever housed a tenant are
// archived, the rest deleted; the response says which.
func (h *UnitHandler) Remove(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.unitService.Remove(c.Request.Context(), orgID, actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// History handles GET /units/:id/history
func (h *UnitHandler) History(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.pageFilter(c)
	if !ok {
		return
	}

	page, err := h.unitService.History(c.Request.Context(), orgID, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}
