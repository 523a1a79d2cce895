package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"auctionhouse-backend/internal/domains/notification/model"
	"auctionhouse-backend/internal/domains/notification/service"
	"auctionhouse-backend/internal/shared/response"
	"auctionhouse-backend/pkg/logger"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	query := &model.ListNotificationsQuery{
		UnreadOnly: c.Query("unread_only") == "true",
		Page:       page,
		Limit:      limit,
	}

	items, total, err := h.service.List(c.Request.Context(), userID, query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Page:  query.Page,
		Limit: query.Limit,
		Total: total,
	})
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	count, err := h.service.CountUnread(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.UnreadCountResponse{UnreadCount: count})
}

// MarkAsRead handles PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true})
}

// MarkAllAsRead handles PATCH /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	updated, err := h.service.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

func (h *NotificationHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotificationNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeNotFound, "notification not found")
	case errors.Is(err, model.ErrUnauthorized):
		response.ErrorResponse(c, http.StatusForbidden, model.ErrCodeUnauthorized, "notification belongs to another user")
	default:
		logger.Error("Notification handler error", err)
		response.InternalServerError(c, "something went wrong")
	}
}
