package realtime

import (
	"fmt"

	"github.com/google/uuid"

	"auctionhouse-backend/internal/domains/auction/model"
)

// Event types pushed to realtime subscribers.
const (
	EventBidAccepted   = "bid_accepted"
	EventStatusChanged = "status_changed"
	EventAuctionSold   = "auction_sold"
)

// Event is the wire payload for the per-item realtime channel. Delivery is
// at-least-once; subscribers de-duplicate and order by Version. A client
// that reconnects re-fetches the snapshot and drops events with a Version
// at or below the snapshot's.
type Event struct {
	Type          string                     `json:"type"`
	AuctionItemID uuid.UUID                  `json:"auction_item_id"`
	Version       int64                      `json:"version"`
	Snapshot      *model.AuctionItemSnapshot `json:"snapshot,omitempty"`

	// Sold is meaningful for auction_sold events only: false means the
	// auction ended without a winner.
	Sold bool `json:"sold"`
}

// ChannelForItem names the pub/sub channel carrying one item's events.
func ChannelForItem(itemID uuid.UUID) string {
	return fmt.Sprintf("auction:events:%s", itemID.String())
}
