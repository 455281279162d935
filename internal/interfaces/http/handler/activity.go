package handler

import (
	"github.com/gin-gonic/gin"
	activityapp "github.com/propcore/backend/internal/application/activity"
)

// ActivityHandler serves audit logs and in-app notifications
type ActivityHandler struct {
	BaseHandler
	activityService *activityapp.Service
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *activityapp.Service) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// AuditLog handles GET /audit/:entity_type/:id
func (h *ActivityHandler) AuditLog(c *gin.Context) {
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

	page, err := h.activityService.AuditLog(c.Request.Context(), orgID, c.Param("entity_type"), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Notifications handles GET /notifications/:recipient_id
func (h *ActivityHandler) Notifications(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	recipientID, ok := h.pathID(c, "recipient_id")
	if !ok {
		return
	}
	filter, ok := h.pageFilter(c)
	if !ok {
		return
	}

	page, err := h.activityService.Notifications(c.Request.Context(), orgID, recipientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// MyNotifications handles GET /notifications, listing the caller's own
func (h *ActivityHandler) MyNotifications(c *gin.Context) {
	orgID, actorID, ok := h.identity(c)
	if !ok {
		return
	}
	filter, ok := h.pageFilter(c)
	if !ok {
		return
	}

	page, err := h.activityService.Notifications(c.Request.Context(), orgID, actorID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// MarkRead handles POST /notifications/:id/read
func (h *ActivityHandler) MarkRead(c *gin.Context) {
	orgID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.activityService.MarkNotificationRead(c.Request.Context(), orgID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": id, "read": true})
}
