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
// Resolve Expired Auctions Handler
// ============================================

type ResolveExpiredHandler struct {
	resolution service.ResolutionService
}

func NewResolveExpiredHandler(resolution service.ResolutionService) *ResolveExpiredHandler {
	return &ResolveExpiredHandler{resolution: resolution}
}

func (h *ResolveExpiredHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ResolveExpiredPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ResolveExpired payload")
		return err
	}

	resolved, err := h.resolution.ResolveExpired(ctx, payload.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("Resolution sweep failed")
		return err
	}

	if resolved > 0 {
		log.Info().Int("resolved", resolved).Msg("Resolution sweep completed")
	}

	return nil
}
