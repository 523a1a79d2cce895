package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auctionmodel "auctionhouse-backend/internal/domains/auction/model"
	"auctionhouse-backend/internal/domains/watchlist/service"
	"auctionhouse-backend/internal/shared/response"
	"auctionhouse-backend/pkg/logger"
)

type WatchlistHandler struct {
	service service.WatchlistService
}

func NewWatchlistHandler(svc service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{service: svc}
}

// Watch handles POST /api/v1/auctions/:id/watch
func (h *WatchlistHandler) Watch(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid auction id")
		return
	}

	created, err := h.service.Watch(c.Request.Context(), userID, itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"watching": true})
}

// Unwatch handles DELETE /api/v1/auctions/:id/watch
func (h *WatchlistHandler) Unwatch(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid auction id")
		return
	}

	removed, err := h.service.Unwatch(c.Request.Context(), userID, itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if !removed {
		response.NotFound(c, "auction is not on your watchlist")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"watching": false})
}

// List handles GET /api/v1/watchlist
func (h *WatchlistHandler) List(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, total, err := h.service.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *WatchlistHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auctionmodel.ErrAuctionNotFound):
		response.ErrorResponse(c, http.StatusNotFound, auctionmodel.ErrCodeNotFound, "auction not found")
	default:
		logger.Error("Watchlist handler error", err)
		response.InternalServerError(c, "something went wrong")
	}
}
