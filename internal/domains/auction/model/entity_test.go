package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMinimumNextBid(t *testing.T) {
	current := dec("150")

	tests := []struct {
		name string
		item AuctionItem
		want string
	}{
		{
			name: "empty ledger uses starting bid",
			item: AuctionItem{StartingBid: dec("100"), BidIncrement: dec("5")},
			want: "100",
		},
		{
			name: "with bids uses current plus increment",
			item: AuctionItem{StartingBid: dec("100"), BidIncrement: dec("5"), CurrentBid: &current},
			want: "155",
		},
		{
			name: "fractional increment",
			item: AuctionItem{StartingBid: dec("0.99"), BidIncrement: dec("0.01"), CurrentBid: &current},
			want: "150.01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.item.MinimumNextBid().Equal(dec(tt.want)),
				"got %s, want %s", tt.item.MinimumNextBid(), tt.want)
		})
	}
}

func TestIsOpenForBids(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		status  string
		endDate time.Time
		want    bool
	}{
		{"active before end", StatusActive, now.Add(time.Hour), true},
		{"active at end instant", StatusActive, now, false},
		{"active past end", StatusActive, now.Add(-time.Second), false},
		{"draft", StatusDraft, now.Add(time.Hour), false},
		{"ended", StatusEnded, now.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := AuctionItem{Status: tt.status, EndDate: tt.endDate}
			require.Equal(t, tt.want, item.IsOpenForBids(now))
		})
	}
}

func TestTimeRemaining(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.Equal(t, 90*time.Minute, TimeRemaining(now, now.Add(90*time.Minute)))
	require.Equal(t, time.Duration(0), TimeRemaining(now, now))
	require.Equal(t, time.Duration(0), TimeRemaining(now, now.Add(-time.Hour)), "never negative")
}

func TestBuildSnapshot(t *testing.T) {
	now := time.Now()
	current := dec("240")
	bidder := uuid.New()

	item := &AuctionItem{
		ID:              uuid.New(),
		SellerID:        uuid.New(),
		Title:           "Brass telescope",
		StartingBid:     dec("200"),
		BidIncrement:    dec("10"),
		CurrentBid:      &current,
		HighestBidderID: &bidder,
		BidCount:        4,
		Status:          StatusActive,
		EndDate:         now.Add(30 * time.Second),
		Version:         4,
	}

	snap := BuildSnapshot(item, now)
	require.Equal(t, item.ID, snap.ID)
	require.True(t, snap.MinimumNextBid.Equal(dec("250")))
	require.Equal(t, int64(30), snap.TimeRemainingSeconds)
	require.Equal(t, int64(4), snap.Version)
	require.Equal(t, 4, snap.BidCount)
}
