package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"auctionhouse-backend/internal/domains/notification/model"
)

// NotificationRepository is the data access contract for notifications.
type NotificationRepository interface {
	// Create inserts the notification unless its idempotency key already
	// exists. Returns false when the key collided and nothing was written.
	Create(ctx context.Context, n *model.Notification) (bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)

	ListByUser(ctx context.Context, userID uuid.UUID, query *model.ListNotificationsQuery) ([]model.Notification, int64, error)

	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkAsRead flips is_read for the user's notification. Already-read
	// notifications are left untouched so ReadAt stays at first read.
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error

	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)

	UpdateEmailStatus(ctx context.Context, id uuid.UUID, status string) error

	// DeleteOlderThan removes read notifications created before the cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
