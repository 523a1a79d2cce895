package email

import (
	"context"
	"fmt"
	"net/smtp"

	"auctionhouse-backend/pkg/logger"
)

type NotificationEmailData struct {
	Email   string
	Subject string
	Body    string
}

type EmailService interface {
	SendNotificationEmail(ctx context.Context, data NotificationEmailData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

// NewSMTPEmailService targets a plain SMTP relay; in development that is
// a local mailpit/mailhog listener.
func NewSMTPEmailService(smtpHost, smtpPort, from string) EmailService {
	if from == "" {
		from = "noreply@auctionhouse.dev"
	}
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendNotificationEmail(ctx context.Context, data NotificationEmailData) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, data.Email, data.Subject, data.Body))

	err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{data.Email}, msg)
	if err != nil {
		logger.Info("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        data.Email,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
