package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	propertyapp "github.com/propcore/backend/internal/application/property"
)

// MaintenanceHandler handles maintenance request endpoints
type MaintenanceHandler struct {
	BaseHandler
	maintenanceService *propertyapp.MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler
func NewMaintenanceHandler(maintenanceService *propertyapp.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// Create handles POST /maintenance
func (h *MaintenanceHandler) Create(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	var req propertyapp.CreateMaintenanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	request, err := h.maintenanceService.Create(c.Request.Context(), orgID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, request)
}

// GetByID handles GET /maintenance/:id
func (h *MaintenanceHandler) GetByID(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	request, err := h.maintenanceService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// ListOpenQuery selects the unit whose open requests are listed
type ListOpenQuery struct {
	UnitID string `form:"unit_id" binding:"required,uuid"`
}

// ListOpen handles GET /maintenance?unit_id=
func (h *MaintenanceHandler) ListOpen(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var q ListOpenQuery
	if !h.bindQuery(c, &q) {
		return
	}

	requests, err := h.maintenanceService.ListOpen(c.Request.Context(), orgID, uuid.MustParse(q.UnitID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requests)
}

// Complete handles POST /maintenance/:id/complete
func (h *MaintenanceHandler) Complete(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req propertyapp.CompleteMaintenanceRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	request, err := h.maintenanceService.Complete(c.Request.Context(), orgID, actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// Cancel handles POST /maintenance/:id/cancel
func (h *MaintenanceHandler) Cancel(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	request, err := h.maintenanceService.Cancel(c.Request.Context(), orgID, actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}
