package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"auctionhouse-backend/internal/domains/notification/repository"
	"auctionhouse-backend/internal/shared"
	"auctionhouse-backend/internal/shared/utils"
)

// ============================================
// Cleanup Old Notifications Handler
// ============================================

type CleanupOldNotificationsHandler struct {
	repo repository.NotificationRepository
}

func NewCleanupOldNotificationsHandler(repo repository.NotificationRepository) *CleanupOldNotificationsHandler {
	return &CleanupOldNotificationsHandler{repo: repo}
}

func (h *CleanupOldNotificationsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.CleanupOldNotificationsPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal CleanupOldNotifications payload")
		return err
	}

	if payload.OlderThanDays < 1 {
		payload.OlderThanDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -payload.OlderThanDays)

	deleted, err := h.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Notification cleanup failed")
		return err
	}

	log.Info().
		Int64("deleted", deleted).
		Int("older_than_days", payload.OlderThanDays).
		Msg("Old notifications cleaned up")

	return nil
}
