package service

import (
	"context"

	"github.com/google/uuid"

	"auctionhouse-backend/internal/domains/auction/model"
)

// BiddingService owns the write path for auction items and bids, and the
// bidding-view read path.
type BiddingService interface {
	CreateAuction(ctx context.Context, sellerID uuid.UUID, req *model.CreateAuctionRequest) (*model.AuctionItem, error)

	// ActivateAuction performs the draft -> active transition for the
	// item's seller.
	ActivateAuction(ctx context.Context, itemID, sellerID uuid.UUID) (*model.AuctionItem, error)

	// GetSnapshot returns the current bidding view. May serve a cached
	// copy no older than the configured snapshot TTL.
	GetSnapshot(ctx context.Context, itemID uuid.UUID) (*model.AuctionItemSnapshot, error)

	// PlaceBid validates and accepts a bid under the item's row lock.
	// Rejections come back as model errors (ErrAuctionClosed,
	// ErrSellerCannotBid, *BidTooLowError); ErrConflict means the caller
	// should retry with fresh state.
	PlaceBid(ctx context.Context, itemID, bidderID uuid.UUID, req *model.PlaceBidRequest) (*model.BidAcceptedResponse, error)

	ListBids(ctx context.Context, itemID uuid.UUID, page, limit int) ([]model.Bid, int, error)
}

// ResolutionService sweeps expired auctions and delivers the time-based
// notifications.
type ResolutionService interface {
	// ResolveExpired finalizes up to batchSize expired active items.
	// Returns how many items this sweep claimed.
	ResolveExpired(ctx context.Context, batchSize int) (int, error)

	// ResolveItem finalizes one item. The second return reports whether
	// this invocation won the active -> ended claim; a lost claim is not
	// an error.
	ResolveItem(ctx context.Context, item *model.AuctionItem) (*model.ResolutionResult, bool, error)

	// NotifyEndingSoon notifies every participant of items closing within
	// the window. Returns how many notifications were created.
	NotifyEndingSoon(ctx context.Context, windowMinutes int) (int, error)
}
