package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	TypeOutbid         = "outbid"
	TypeAuctionLive    = "auction_live"
	TypeAuctionWon     = "won_auction"
	TypeAuctionSold    = "auction_sold"
	TypeAuctionEnding  = "auction_ending"
	TypePaymentPending = "payment_pending"
)

// Email delivery states for a notification.
const (
	EmailStatusPending = "pending"
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
)

// Notification is one user-facing message. IdempotencyKey makes dispatch
// safe to repeat: re-dispatching the same event inserts nothing.
type Notification struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Type          string     `json:"type"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	AuctionItemID *uuid.UUID `json:"auction_item_id,omitempty"`

	IdempotencyKey string `json:"-"`

	IsRead      bool       `json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	EmailStatus string     `json:"email_status"`

	CreatedAt time.Time `json:"created_at"`
}
