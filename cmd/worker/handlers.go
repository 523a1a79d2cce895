package main

import (
	"github.com/hibiken/asynq"

	auctionJob "auctionhouse-backend/internal/domains/auction/job"
	notifJob "auctionhouse-backend/internal/domains/notification/job"
	paymentJob "auctionhouse-backend/internal/domains/payment/job"
	"auctionhouse-backend/internal/infrastructure/email"
	emailjob "auctionhouse-backend/internal/infrastructure/email/job"
	"auctionhouse-backend/internal/shared"
	"auctionhouse-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Auction lifecycle handlers
	resolveExpired *auctionJob.ResolveExpiredHandler
	endingSoon     *auctionJob.NotifyEndingSoonHandler

	// Notification handlers
	notificationEmail *emailjob.NotificationEmailHandler
	cleanupOld        *notifJob.CleanupOldNotificationsHandler

	// Payment handlers
	initiateCharge *paymentJob.InitiateChargeHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container, cfg *Config) *HandlerRegistry {
	emailSvc := email.NewSMTPEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailFrom)

	return &HandlerRegistry{
		resolveExpired: auctionJob.NewResolveExpiredHandler(c.ResolutionService),
		endingSoon:     auctionJob.NewNotifyEndingSoonHandler(c.ResolutionService),

		notificationEmail: emailjob.NewNotificationEmailHandler(emailSvc, c.NotificationRepo, c.ProfileRepo),
		cleanupOld:        notifJob.NewCleanupOldNotificationsHandler(c.NotificationRepo),

		initiateCharge: paymentJob.NewInitiateChargeHandler(c.Dispatcher),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Auction lifecycle tasks
	mux.HandleFunc(shared.TypeResolveExpiredAuctions, h.resolveExpired.ProcessTask)
	mux.HandleFunc(shared.TypeNotifyEndingSoon, h.endingSoon.ProcessTask)

	// Notification tasks
	mux.HandleFunc(shared.TypeSendNotificationEmail, h.notificationEmail.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupOldNotifications, h.cleanupOld.ProcessTask)

	// Payment tasks
	mux.HandleFunc(shared.TypeInitiatePaymentCharge, h.initiateCharge.ProcessTask)
}
