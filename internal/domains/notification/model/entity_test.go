package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The type strings are persisted and serialized to clients; renaming a
// constant must never change them.
func TestNotificationTypeValues(t *testing.T) {
	require.Equal(t, "outbid", TypeOutbid)
	require.Equal(t, "auction_live", TypeAuctionLive)
	require.Equal(t, "won_auction", TypeAuctionWon)
	require.Equal(t, "auction_sold", TypeAuctionSold)
	require.Equal(t, "auction_ending", TypeAuctionEnding)
	require.Equal(t, "payment_pending", TypePaymentPending)
}

func TestEmailStatusValues(t *testing.T) {
	require.Equal(t, "pending", EmailStatusPending)
	require.Equal(t, "sent", EmailStatusSent)
	require.Equal(t, "failed", EmailStatusFailed)
}
