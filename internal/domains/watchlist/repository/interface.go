package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	auctionmodel "auctionhouse-backend/internal/domains/auction/model"
)

// WatchlistRepository stores the user -> auction watch pairs.
type WatchlistRepository interface {
	// Add records the watch; returns false when it already existed.
	Add(ctx context.Context, userID, itemID uuid.UUID) (bool, error)

	// Remove drops the watch; returns false when there was none.
	Remove(ctx context.Context, userID, itemID uuid.UUID) (bool, error)

	// ListByUser returns the watched auctions newest-watch first, each
	// paired with the instant it was watched.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]WatchedItem, int64, error)

	// ListWatcherIDs returns the users watching an item.
	ListWatcherIDs(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error)
}

// WatchedItem pairs a watch timestamp with the auction row it points at.
type WatchedItem struct {
	WatchedAt time.Time
	Item      auctionmodel.AuctionItem
}
