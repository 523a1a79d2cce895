package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"auctionhouse-backend/internal/domains/notification/model"
)

// TaskEnqueuer is the producer-side queue surface the dispatcher needs.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error
}

// DispatchInput describes one notification to deliver. IdempotencyKey
// identifies the triggering event, not the delivery attempt: dispatching
// the same event twice results in one notification.
type DispatchInput struct {
	UserID         uuid.UUID
	Type           string
	Title          string
	Message        string
	AuctionItemID  *uuid.UUID
	IdempotencyKey string
}

// Dispatcher persists notifications and hands email delivery to the worker.
type Dispatcher interface {
	// Dispatch writes the notification and enqueues its email. Returns
	// false when the idempotency key was already used.
	Dispatch(ctx context.Context, input *DispatchInput) (bool, error)
}

// NotificationService is the read/ack surface behind the notification
// endpoints.
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, query *model.ListNotificationsQuery) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}
