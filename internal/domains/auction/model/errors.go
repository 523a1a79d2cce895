package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ================================================
// CUSTOM ERROR CODES
// ================================================
const (
	ErrCodeNotFound        = "AUC001"
	ErrCodeAuctionClosed   = "AUC002"
	ErrCodeSellerCannotBid = "AUC003"
	ErrCodeInvalidAmount   = "AUC004"
	ErrCodeBidTooLow       = "AUC005"
	ErrCodeConflict        = "AUC006"
	ErrCodeUnavailable     = "AUC007"
	ErrCodeInvalidStatus   = "AUC008"
	ErrCodeUnauthorized    = "AUC009"
)

// ================================================
// ERROR DEFINITIONS
// ================================================
var (
	ErrAuctionNotFound = errors.New("auction item not found")
	ErrAuctionClosed   = errors.New("auction is not accepting bids")
	ErrSellerCannotBid = errors.New("seller cannot bid on own auction")
	ErrInvalidAmount   = errors.New("bid amount is not a valid positive number")
	ErrBidTooLow       = errors.New("bid amount below minimum acceptable bid")
	ErrConflict        = errors.New("concurrent modification, retry with fresh state")
	ErrUnavailable     = errors.New("auction store temporarily unavailable")
	ErrInvalidStatus   = errors.New("invalid auction status transition")
	ErrUnauthorized    = errors.New("unauthorized access")
)

// ================================================
// CUSTOM ERROR TYPE
// ================================================
type AuctionError struct {
	Code    string
	Message string
	Err     error
}

func (e *AuctionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AuctionError) Unwrap() error {
	return e.Err
}

// NewAuctionError creates a new AuctionError
func NewAuctionError(code, message string, err error) *AuctionError {
	return &AuctionError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// BidTooLowError carries the minimum acceptable amount so the caller can
// refresh its displayed minimum and resubmit. Losing a bidding race surfaces
// as this error, not as a system fault.
type BidTooLowError struct {
	MinimumBid decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid too low, minimum acceptable bid is %s", e.MinimumBid.String())
}

func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}
