package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	auctionmodel "auctionhouse-backend/internal/domains/auction/model"
	auctionrepo "auctionhouse-backend/internal/domains/auction/repository"
	"auctionhouse-backend/internal/domains/watchlist/model"
	"auctionhouse-backend/internal/domains/watchlist/repository"
)

type WatchlistService interface {
	Watch(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	Unwatch(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.WatchedAuction, int64, error)
}

type watchlistService struct {
	repo        repository.WatchlistRepository
	auctionRepo auctionrepo.AuctionRepository
}

func NewWatchlistService(repo repository.WatchlistRepository, auctionRepo auctionrepo.AuctionRepository) WatchlistService {
	return &watchlistService{repo: repo, auctionRepo: auctionRepo}
}

func (s *watchlistService) Watch(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	// Watching a non-existent auction stays a 404, not a dangling row.
	if _, err := s.auctionRepo.GetItemByID(ctx, itemID); err != nil {
		return false, err
	}

	created, err := s.repo.Add(ctx, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to watch auction: %w", err)
	}

	return created, nil
}

func (s *watchlistService) Unwatch(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	removed, err := s.repo.Remove(ctx, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to unwatch auction: %w", err)
	}

	return removed, nil
}

func (s *watchlistService) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.WatchedAuction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, total, err := s.repo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list watchlist: %w", err)
	}

	now := time.Now()
	out := make([]model.WatchedAuction, 0, len(rows))
	for i := range rows {
		out = append(out, model.WatchedAuction{
			WatchedAt: rows[i].WatchedAt,
			Auction:   auctionmodel.BuildSnapshot(&rows[i].Item, now),
		})
	}

	return out, total, nil
}
