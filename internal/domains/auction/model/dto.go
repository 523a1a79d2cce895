package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ================================================
// REQUEST DTOs
// ================================================

type CreateAuctionRequest struct {
	Title        string           `json:"title"`
	Description  *string          `json:"description,omitempty"`
	StartingBid  decimal.Decimal  `json:"starting_bid"`
	BidIncrement decimal.Decimal  `json:"bid_increment"`
	ReservePrice *decimal.Decimal `json:"reserve_price,omitempty"`
	EndDate      time.Time        `json:"end_date"`
	PublishNow   bool             `json:"publish_now"`
}

func (r CreateAuctionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.StartingBid, validation.By(decimalNonNegative)),
		validation.Field(&r.BidIncrement, validation.By(decimalPositive)),
		validation.Field(&r.EndDate, validation.Required, validation.By(futureTime)),
	)
}

type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (r PlaceBidRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.By(decimalPositive)),
	)
}

// ozzo rule helpers for decimal / time fields
func decimalPositive(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok || !d.IsPositive() {
		return validation.NewError("validation_decimal_positive", "must be a positive amount")
	}
	return nil
}

func decimalNonNegative(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok || d.IsNegative() {
		return validation.NewError("validation_decimal_non_negative", "must not be negative")
	}
	return nil
}

func futureTime(value interface{}) error {
	t, ok := value.(time.Time)
	if !ok || !t.After(time.Now()) {
		return validation.NewError("validation_future_time", "must be in the future")
	}
	return nil
}

// ================================================
// RESPONSE DTOs
// ================================================

// AuctionItemSnapshot is the read contract for the bidding view. Clients
// must not cache MinimumNextBid beyond one render cycle; concurrent bids
// can move it at any moment.
type AuctionItemSnapshot struct {
	ID                   uuid.UUID        `json:"id"`
	Title                string           `json:"title"`
	SellerID             uuid.UUID        `json:"seller_id"`
	StartingBid          decimal.Decimal  `json:"starting_bid"`
	BidIncrement         decimal.Decimal  `json:"bid_increment"`
	CurrentBid           *decimal.Decimal `json:"current_bid,omitempty"`
	MinimumNextBid       decimal.Decimal  `json:"minimum_next_bid"`
	HighestBidderID      *uuid.UUID       `json:"highest_bidder_id,omitempty"`
	BidCount             int              `json:"bid_count"`
	Status               string           `json:"status"`
	EndDate              time.Time        `json:"end_date"`
	TimeRemainingSeconds int64            `json:"time_remaining_seconds"`
	WinnerID             *uuid.UUID       `json:"winner_id,omitempty"`
	FinalSellingPrice    *decimal.Decimal `json:"final_selling_price,omitempty"`
	ReserveMet           *bool            `json:"reserve_met,omitempty"`
	Version              int64            `json:"version"`
}

// BuildSnapshot projects an AuctionItem into its client-facing snapshot.
func BuildSnapshot(item *AuctionItem, now time.Time) *AuctionItemSnapshot {
	return &AuctionItemSnapshot{
		ID:                   item.ID,
		Title:                item.Title,
		SellerID:             item.SellerID,
		StartingBid:          item.StartingBid,
		BidIncrement:         item.BidIncrement,
		CurrentBid:           item.CurrentBid,
		MinimumNextBid:       item.MinimumNextBid(),
		HighestBidderID:      item.HighestBidderID,
		BidCount:             item.BidCount,
		Status:               item.Status,
		EndDate:              item.EndDate,
		TimeRemainingSeconds: int64(TimeRemaining(now, item.EndDate) / time.Second),
		WinnerID:             item.WinnerID,
		FinalSellingPrice:    item.FinalSellingPrice,
		ReserveMet:           item.ReserveMet,
		Version:              item.Version,
	}
}

type BidAcceptedResponse struct {
	Bid      *Bid                 `json:"bid"`
	Snapshot *AuctionItemSnapshot `json:"auction"`
}

type BidHistoryResponse struct {
	AuctionItemID uuid.UUID `json:"auction_item_id"`
	Bids          []Bid     `json:"bids"`
}
