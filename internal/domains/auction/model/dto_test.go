package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() CreateAuctionRequest {
	return CreateAuctionRequest{
		Title:        "Vintage pocket watch",
		StartingBid:  dec("50"),
		BidIncrement: dec("2.50"),
		EndDate:      time.Now().Add(24 * time.Hour),
	}
}

func TestCreateAuctionRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validCreateRequest().Validate())
	})

	t.Run("free listing is allowed", func(t *testing.T) {
		req := validCreateRequest()
		req.StartingBid = decimal.Zero
		require.NoError(t, req.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*CreateAuctionRequest)
	}{
		{"missing title", func(r *CreateAuctionRequest) { r.Title = "" }},
		{"title too short", func(r *CreateAuctionRequest) { r.Title = "ab" }},
		{"negative starting bid", func(r *CreateAuctionRequest) { r.StartingBid = dec("-1") }},
		{"zero increment", func(r *CreateAuctionRequest) { r.BidIncrement = decimal.Zero }},
		{"negative increment", func(r *CreateAuctionRequest) { r.BidIncrement = dec("-0.5") }},
		{"past end date", func(r *CreateAuctionRequest) { r.EndDate = time.Now().Add(-time.Hour) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			require.Error(t, req.Validate())
		})
	}
}

func TestPlaceBidRequestValidate(t *testing.T) {
	require.NoError(t, PlaceBidRequest{Amount: dec("10")}.Validate())
	require.Error(t, PlaceBidRequest{Amount: decimal.Zero}.Validate())
	require.Error(t, PlaceBidRequest{Amount: dec("-10")}.Validate())
}
