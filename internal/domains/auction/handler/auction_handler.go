package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"auctionhouse-backend/internal/domains/auction/model"
	"auctionhouse-backend/internal/domains/auction/service"
	"auctionhouse-backend/internal/infrastructure/realtime"
	"auctionhouse-backend/internal/shared/response"
	"auctionhouse-backend/pkg/logger"
)

type AuctionHandler struct {
	bidding    service.BiddingService
	resolution service.ResolutionService
	subscriber realtime.Subscriber
}

func NewAuctionHandler(bidding service.BiddingService, resolution service.ResolutionService, subscriber realtime.Subscriber) *AuctionHandler {
	return &AuctionHandler{
		bidding:    bidding,
		resolution: resolution,
		subscriber: subscriber,
	}
}

// ================================================
// LIFECYCLE ENDPOINTS
// ================================================

// CreateAuction handles POST /api/v1/auctions
func (h *AuctionHandler) CreateAuction(c *gin.Context) {
	sellerID := c.MustGet("userID").(uuid.UUID)

	var req model.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	item, err := h.bidding.CreateAuction(c.Request.Context(), sellerID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, item)
}

// ActivateAuction handles POST /api/v1/auctions/:id/activate
func (h *AuctionHandler) ActivateAuction(c *gin.Context) {
	sellerID := c.MustGet("userID").(uuid.UUID)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid auction id")
		return
	}

	item, err := h.bidding.ActivateAuction(c.Request.Context(), itemID, sellerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// ================================================
// BIDDING VIEW ENDPOINTS
// ================================================

// GetAuction handles GET /api/v1/auctions/:id
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid auction id")
		return
	}

	snapshot, err := h.bidding.GetSnapshot(c.Request.Context(), itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, snapshot)
}

// ListBids handles GET /api/v1/auctions/:id/bids
func (h *AuctionHandler) ListBids(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid auction id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	bids, total, err := h.bidding.ListBids(c.Request.Context(), itemID, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, model.BidHistoryResponse{
		AuctionItemID: itemID,
		Bids:          bids,
	}, &response.Meta{Page: page, Limit: limit, Total: int64(total)})
}

// ================================================
// BID ACCEPTANCE ENDPOINT
// ================================================

// PlaceBid handles POST /api/v1/auctions/:id/bids
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	bidderID := c.MustGet("userID").(uuid.UUID)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid auction id")
		return
	}

	var req model.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.bidding.PlaceBid(c.Request.Context(), itemID, bidderID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// ================================================
// REALTIME STREAM
// ================================================

// StreamAuction handles GET /api/v1/auctions/:id/stream as server-sent
// events. The first event is always a full snapshot; clients drop any
// following event whose version is not above the snapshot's.
func (h *AuctionHandler) StreamAuction(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid auction id")
		return
	}

	snapshot, err := h.bidding.GetSnapshot(c.Request.Context(), itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	events, err := h.subscriber.Subscribe(c.Request.Context(), itemID)
	if err != nil {
		logger.Error("Failed to subscribe to auction channel", err)
		response.ServiceUnavailable(c, "realtime stream unavailable")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("snapshot", snapshot)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case payload, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("auction", json.RawMessage(payload))
			return true
		}
	})
}

// ================================================
// INTERNAL TRIGGER
// ================================================

// ResolveExpired handles POST /api/v1/internal/resolve-expired. It runs the
// same sweep as the scheduled worker task; operators use it to drain a
// backlog without waiting for the next tick.
func (h *AuctionHandler) ResolveExpired(c *gin.Context) {
	batchSize, _ := strconv.Atoi(c.DefaultQuery("batch_size", "100"))

	resolved, err := h.resolution.ResolveExpired(c.Request.Context(), batchSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"resolved": resolved})
}

// ================================================
// ERROR MAPPING
// ================================================

func (h *AuctionHandler) respondError(c *gin.Context, err error) {
	var tooLow *model.BidTooLowError
	var validationErrs validation.Errors

	switch {
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed", validationErrs)
	case errors.As(err, &tooLow):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, model.ErrCodeBidTooLow,
			"bid amount below minimum acceptable bid",
			gin.H{"minimum_bid": tooLow.MinimumBid})
	case errors.Is(err, model.ErrAuctionNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeNotFound, "auction not found")
	case errors.Is(err, model.ErrAuctionClosed):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeAuctionClosed, "auction is not accepting bids")
	case errors.Is(err, model.ErrSellerCannotBid):
		response.ErrorResponse(c, http.StatusForbidden, model.ErrCodeSellerCannotBid, "sellers cannot bid on their own auctions")
	case errors.Is(err, model.ErrInvalidAmount):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeInvalidAmount, "bid amount must be a positive number")
	case errors.Is(err, model.ErrConflict):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeConflict, "auction is under heavy contention, retry with fresh state")
	case errors.Is(err, model.ErrInvalidStatus):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeInvalidStatus, "auction is not in a state that allows this transition")
	case errors.Is(err, model.ErrUnauthorized):
		response.ErrorResponse(c, http.StatusForbidden, model.ErrCodeUnauthorized, "auction belongs to another seller")
	case errors.Is(err, model.ErrUnavailable):
		response.ErrorResponse(c, http.StatusServiceUnavailable, model.ErrCodeUnavailable, "auction store temporarily unavailable, please retry")
	default:
		logger.Error("Auction handler error", err)
		response.InternalServerError(c, "something went wrong")
	}
}
