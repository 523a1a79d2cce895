package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"auctionhouse-backend/internal/domains/auction/service"
	"auctionhouse-backend/internal/shared"
	"auctionhouse-backend/internal/shared/utils"
)

// ============================================
// Notify Ending Soon Handler
// ============================================

type NotifyEndingSoonHandler struct {
	resolution service.ResolutionService
}

func NewNotifyEndingSoonHandler(resolution service.ResolutionService) *NotifyEndingSoonHandler {
	return &NotifyEndingSoonHandler{resolution: resolution}
}

func (h *NotifyEndingSoonHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.NotifyEndingSoonPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal NotifyEndingSoon payload")
		return err
	}

	created, err := h.resolution.NotifyEndingSoon(ctx, payload.WindowMinutes)
	if err != nil {
		log.Error().Err(err).Msg("Ending-soon sweep failed")
		return err
	}

	if created > 0 {
		log.Info().Int("notifications", created).Msg("Ending-soon notifications dispatched")
	}

	return nil
}
