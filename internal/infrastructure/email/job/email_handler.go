package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	identitymodel "auctionhouse-backend/internal/domains/identity/model"
	identityrepo "auctionhouse-backend/internal/domains/identity/repository"
	notifmodel "auctionhouse-backend/internal/domains/notification/model"
	notifrepo "auctionhouse-backend/internal/domains/notification/repository"
	"auctionhouse-backend/internal/infrastructure/email"
	"auctionhouse-backend/internal/shared"
	"auctionhouse-backend/internal/shared/utils"
)

// ============================================
// Notification Email Handler
// ============================================

type NotificationEmailHandler struct {
	emailService email.EmailService
	notifRepo    notifrepo.NotificationRepository
	profileRepo  identityrepo.UserProfileRepository
}

func NewNotificationEmailHandler(
	emailService email.EmailService,
	notifRepo notifrepo.NotificationRepository,
	profileRepo identityrepo.UserProfileRepository,
) *NotificationEmailHandler {
	return &NotificationEmailHandler{
		emailService: emailService,
		notifRepo:    notifRepo,
		profileRepo:  profileRepo,
	}
}

func (h *NotificationEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.NotificationEmailPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal NotificationEmail payload")
		return err
	}

	profile, err := h.profileRepo.GetByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, identitymodel.ErrProfileNotFound) {
			// No mailbox to deliver to; the in-app notification stands
			// on its own. Don't let asynq retry forever.
			log.Warn().
				Str("user_id", payload.UserID.String()).
				Msg("No profile for notification email, skipping")
			h.markStatus(ctx, payload, notifmodel.EmailStatusFailed)
			return nil
		}
		return fmt.Errorf("load user profile: %w", err)
	}

	data := email.NotificationEmailData{
		Email:   profile.Email,
		Subject: payload.Title,
		Body:    payload.Message,
	}
	if err := h.emailService.SendNotificationEmail(ctx, data); err != nil {
		log.Error().Err(err).
			Str("notification_id", payload.NotificationID.String()).
			Msg("Failed to send notification email")
		h.markStatus(ctx, payload, notifmodel.EmailStatusFailed)
		return fmt.Errorf("send notification email: %w", err)
	}

	h.markStatus(ctx, payload, notifmodel.EmailStatusSent)

	log.Info().
		Str("notification_id", payload.NotificationID.String()).
		Str("type", payload.Type).
		Msg("Notification email sent successfully")

	return nil
}

func (h *NotificationEmailHandler) markStatus(ctx context.Context, payload shared.NotificationEmailPayload, status string) {
	if err := h.notifRepo.UpdateEmailStatus(ctx, payload.NotificationID, status); err != nil {
		log.Error().Err(err).
			Str("notification_id", payload.NotificationID.String()).
			Msg("Failed to update email status")
	}
}
