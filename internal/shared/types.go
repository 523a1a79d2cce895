package shared

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asynq task types
const (
	TypeResolveExpiredAuctions  = "auction:resolve_expired"
	TypeNotifyEndingSoon        = "auction:notify_ending_soon"
	TypeSendNotificationEmail   = "notification:send_email"
	TypeCleanupOldNotifications = "notification:cleanup_old"
	TypeInitiatePaymentCharge   = "payment:initiate_charge"
)

// Asynq queue names
const (
	QueueAuction      = "auction"
	QueueNotification = "notification"
	QueuePayment      = "payment"
)

// ResolveExpiredPayload triggers a resolution sweep over expired active items.
type ResolveExpiredPayload struct {
	BatchSize int `json:"batch_size"`
}

// NotifyEndingSoonPayload triggers auction_ending notifications for items
// closing within the lookahead window.
type NotifyEndingSoonPayload struct {
	WindowMinutes int `json:"window_minutes"`
}

// NotificationEmailPayload carries the outbound email for a notification row.
type NotificationEmailPayload struct {
	NotificationID uuid.UUID  `json:"notification_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	AuctionItemID  *uuid.UUID `json:"auction_item_id,omitempty"`
}

// CleanupOldNotificationsPayload prunes old read notifications.
type CleanupOldNotificationsPayload struct {
	OlderThanDays int `json:"older_than_days"`
}

// PaymentHandoffPayload is the contract handed to the payment subsystem once
// an auction resolves with a winner and the reserve met. The core does not
// learn about payment success or failure.
type PaymentHandoffPayload struct {
	AuctionID         uuid.UUID       `json:"auction_id"`
	WinnerID          uuid.UUID       `json:"winner_id"`
	FinalSellingPrice decimal.Decimal `json:"final_selling_price"`
}
