package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ================================================
// AUCTION ITEM ENTITY
// ================================================

// Auction item statuses. Transitions only move forward:
// draft -> active -> ended.
const (
	StatusDraft  = "draft"
	StatusActive = "active"
	StatusEnded  = "ended"
)

type AuctionItem struct {
	ID          uuid.UUID `json:"id"`
	SellerID    uuid.UUID `json:"seller_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`

	StartingBid  decimal.Decimal  `json:"starting_bid"`
	BidIncrement decimal.Decimal  `json:"bid_increment"`
	ReservePrice *decimal.Decimal `json:"reserve_price,omitempty"`

	// Projection over the bid ledger. CurrentBid is nil until the first
	// accepted bid; HighestBidderID always matches the most recent
	// accepted bid; BidCount equals the number of accepted bids.
	CurrentBid      *decimal.Decimal `json:"current_bid,omitempty"`
	HighestBidderID *uuid.UUID       `json:"highest_bidder_id,omitempty"`
	BidCount        int              `json:"bid_count"`

	Status  string    `json:"status"`
	EndDate time.Time `json:"end_date"`

	// Set exactly once, at resolution. Immutable afterwards.
	WinnerID          *uuid.UUID       `json:"winner_id,omitempty"`
	FinalSellingPrice *decimal.Decimal `json:"final_selling_price,omitempty"`
	ReserveMet        *bool            `json:"reserve_met,omitempty"`

	// Version increases on every accepted bid and on resolution. Realtime
	// subscribers de-duplicate events by it.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MinimumNextBid is the smallest amount the next bid must reach: the
// starting bid while the ledger is empty, current bid plus increment after.
func (a *AuctionItem) MinimumNextBid() decimal.Decimal {
	if a.CurrentBid == nil {
		return a.StartingBid
	}
	return a.CurrentBid.Add(a.BidIncrement)
}

// IsOpenForBids reports whether the item accepts bids at the given instant.
func (a *AuctionItem) IsOpenForBids(now time.Time) bool {
	return a.Status == StatusActive && now.Before(a.EndDate)
}

// TimeRemaining computes the countdown for display. Pure function of its
// inputs; never negative. Clients re-render on a local clock tick, the
// authoritative end instant stays in EndDate.
func TimeRemaining(now, endDate time.Time) time.Duration {
	if !now.Before(endDate) {
		return 0
	}
	return endDate.Sub(now)
}

// ================================================
// BID ENTITY (append-only ledger row)
// ================================================

type Bid struct {
	ID            uuid.UUID       `json:"id"`
	AuctionItemID uuid.UUID       `json:"auction_item_id"`
	BidderID      uuid.UUID       `json:"bidder_id"`
	BidAmount     decimal.Decimal `json:"bid_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ================================================
// RESOLUTION RESULT
// ================================================

// ResolutionResult reports the outcome of one item's Active->Ended claim.
type ResolutionResult struct {
	AuctionItemID     uuid.UUID        `json:"auction_item_id"`
	SellerID          uuid.UUID        `json:"seller_id"`
	WinnerID          *uuid.UUID       `json:"winner_id,omitempty"`
	FinalSellingPrice *decimal.Decimal `json:"final_selling_price,omitempty"`
	ReserveMet        bool             `json:"reserve_met"`
	HadBids           bool             `json:"had_bids"`
}
