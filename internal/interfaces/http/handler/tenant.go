package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	paymentapp "github.com/propcore/backend/internal/application/payment"
	tenancyapp "github.com/propcore/backend/internal/application/tenancy"
)

// TenantHandler handles tenant endpoints
type TenantHandler struct {
	BaseHandler
	tenantService  *tenancyapp.TenantService
	paymentService *paymentapp.PaymentService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *tenancyapp.TenantService, paymentService *paymentapp.PaymentService) *TenantHandler {
	return &TenantHandler{
		tenantService:  tenantService,
		paymentService: paymentService,
	}
}

// ListTenantsQuery are the query parameters of GET /tenants
type ListTenantsQuery struct {
	Page            int      `form:"page" binding:"omitempty,min=1"`
	PageSize        int      `form:"page_size" binding:"omitempty,min=1,max=100"`
	PropertyID      string   `form:"property_id" binding:"omitempty,uuid"`
	Statuses        []string `form:"status" binding:"omitempty,dive,oneof=ACTIVE INACTIVE LATE PENDING TERMINATED"`
	IncludeArchived bool     `form:"include_archived"`
	SortBy          string   `form:"sort_by" binding:"max=50"`
	SortOrder       string   `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func (q ListTenantsQuery) toRequest() tenancyapp.ListTenantsRequest {
	req := tenancyapp.ListTenantsRequest{
		Page:            q.Page,
		PageSize:        q.PageSize,
		Statuses:        q.Statuses,
		IncludeArchived: q.IncludeArchived,
		SortBy:          q.SortBy,
		SortOrder:       q.SortOrder,
	}
	if q.PropertyID != "" {
		id := uuid.MustParse(q.PropertyID)
		req.PropertyID = &id
	}
	return req
}

// Create handles POST /tenants
func (h *TenantHandler) Create(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	var req tenancyapp.CreateTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), orgID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tenant)
}

// List handles GET /tenants
func (h *TenantHandler) List(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var q ListTenantsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.tenantService.List(c.Request.Context(), orgID, q.toRequest())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetByID handles GET /tenants/:id
func (h *TenantHandler) GetByID(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Transfer handles POST /tenants/:id/transfer
func (h *TenantHandler) Transfer(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tenancyapp.TransferTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	movement, err := h.tenantService.Transfer(c.Request.Context(), orgID, actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}

// ChangeStatus handles PATCH /tenants/:id/status
func (h *TenantHandler) ChangeStatus(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tenancyapp.ChangeTenantStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.ChangeStatus(c.Request.Context(), orgID, actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// ChangeRent handles PATCH /tenants/:id/rent
func (h *TenantHandler) ChangeRent(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tenancyapp.ChangeTenantRentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	movement, err := h.tenantService.ChangeRent(c.Request.Context(), orgID, actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movement)
}

// Archive handles POST /tenants/:id/archive
func (h *TenantHandler) Archive(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	tenant, err := h.tenantService.Archive(c.Request.Context(), orgID, actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Movements handles GET /tenants/:id/movements
func (h *TenantHandler) Movements(c *gin.Context) {
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

	page, err := h.tenantService.Movements(c.Request.Context(), orgID, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Payments handles GET /tenants/:id/payments
func (h *TenantHandler) Payments(c *gin.Context) {
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

	page, err := h.paymentService.ListByTenant(c.Request.Context(), orgID, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}
