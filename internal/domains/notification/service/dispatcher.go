package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"auctionhouse-backend/internal/domains/notification/model"
	"auctionhouse-backend/internal/domains/notification/repository"
	"auctionhouse-backend/internal/shared"
	"auctionhouse-backend/pkg/logger"
)

// ================================================
// IDEMPOTENCY KEYS
// ================================================

// OutbidKey identifies one displacement: the bid that took the lead. The
// same user displaced twice gets two notifications, once per displacing bid.
func OutbidKey(itemID, displacingBidID uuid.UUID) string {
	return fmt.Sprintf("outbid:%s:%s", itemID, displacingBidID)
}

// LiveKey identifies the single went-live notice per watcher per item.
func LiveKey(itemID, userID uuid.UUID) string {
	return fmt.Sprintf("live:%s:%s", itemID, userID)
}

// EndingSoonKey identifies the single ending-soon notice per user per item,
// however many sweep runs observe the window.
func EndingSoonKey(itemID, userID uuid.UUID) string {
	return fmt.Sprintf("ending:%s:%s", itemID, userID)
}

// WonKey and SoldKey identify the one-shot resolution notices.
func WonKey(itemID uuid.UUID) string {
	return fmt.Sprintf("won:%s", itemID)
}

func SoldKey(itemID uuid.UUID) string {
	return fmt.Sprintf("sold:%s", itemID)
}

// ================================================
// DISPATCHER SERVICE
// ================================================

type dispatcher struct {
	repo  repository.NotificationRepository
	queue TaskEnqueuer
}

func NewDispatcher(repo repository.NotificationRepository, queue TaskEnqueuer) Dispatcher {
	return &dispatcher{repo: repo, queue: queue}
}

func (d *dispatcher) Dispatch(ctx context.Context, input *DispatchInput) (bool, error) {
	n := &model.Notification{
		UserID:         input.UserID,
		Type:           input.Type,
		Title:          input.Title,
		Message:        input.Message,
		AuctionItemID:  input.AuctionItemID,
		IdempotencyKey: input.IdempotencyKey,
	}

	created, err := d.repo.Create(ctx, n)
	if err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}

	if !created {
		logger.Debug("Notification suppressed by idempotency key", map[string]interface{}{
			"idempotency_key": input.IdempotencyKey,
			"type":            input.Type,
		})
		return false, nil
	}

	payload := shared.NotificationEmailPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		AuctionItemID:  n.AuctionItemID,
	}

	err = d.queue.Enqueue(ctx, shared.TypeSendNotificationEmail, payload,
		asynq.Queue(shared.QueueNotification),
		asynq.MaxRetry(5),
	)
	if err != nil {
		// The in-app notification is already durable; the email can be
		// recovered by a later sweep, so only log.
		logger.Error("Failed to enqueue notification email", err)
	}

	return true, nil
}
