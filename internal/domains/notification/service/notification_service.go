package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"auctionhouse-backend/internal/domains/notification/model"
	"auctionhouse-backend/internal/domains/notification/repository"
)

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, query *model.ListNotificationsQuery) ([]model.Notification, int64, error) {
	query.Normalize()

	items, total, err := s.repo.ListByUser(ctx, userID, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return items, total, nil
}

func (s *notificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}
