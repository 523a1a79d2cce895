package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	notifmodel "auctionhouse-backend/internal/domains/notification/model"
	notifsvc "auctionhouse-backend/internal/domains/notification/service"
	"auctionhouse-backend/internal/shared"
	"auctionhouse-backend/internal/shared/utils"
)

// ============================================
// Payment Handoff Handler
// ============================================

// InitiateChargeHandler hands a resolved sale to the payment subsystem.
// The contract is one-way: auction id, winner, final price. Whether the
// charge later succeeds never flows back into auction state.
type InitiateChargeHandler struct {
	dispatcher notifsvc.Dispatcher
}

func NewInitiateChargeHandler(dispatcher notifsvc.Dispatcher) *InitiateChargeHandler {
	return &InitiateChargeHandler{dispatcher: dispatcher}
}

func (h *InitiateChargeHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.PaymentHandoffPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal PaymentHandoff payload")
		return err
	}

	log.Info().
		Str("auction_id", payload.AuctionID.String()).
		Str("winner_id", payload.WinnerID.String()).
		Str("amount", payload.FinalSellingPrice.String()).
		Msg("Handing sale off to payment subsystem")

	auctionID := payload.AuctionID
	_, err := h.dispatcher.Dispatch(ctx, &notifsvc.DispatchInput{
		UserID:         payload.WinnerID,
		Type:           notifmodel.TypePaymentPending,
		Title:          "Payment required",
		Message:        fmt.Sprintf("Complete your payment of %s to claim your item.", payload.FinalSellingPrice.StringFixed(2)),
		AuctionItemID:  &auctionID,
		IdempotencyKey: fmt.Sprintf("payment:%s", payload.AuctionID),
	})
	if err != nil {
		return fmt.Errorf("dispatch payment notification: %w", err)
	}

	return nil
}
