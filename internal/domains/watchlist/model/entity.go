package model

import (
	"time"

	"github.com/google/uuid"

	auctionmodel "auctionhouse-backend/internal/domains/auction/model"
)

// WatchlistEntry pins an auction to a user's watchlist. The pair is unique;
// watching twice is a no-op.
type WatchlistEntry struct {
	UserID        uuid.UUID `json:"user_id"`
	AuctionItemID uuid.UUID `json:"auction_item_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// WatchedAuction is one watchlist row joined to its auction's bidding view.
type WatchedAuction struct {
	WatchedAt time.Time                         `json:"watched_at"`
	Auction   *auctionmodel.AuctionItemSnapshot `json:"auction"`
}
