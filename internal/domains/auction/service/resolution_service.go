package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"auctionhouse-backend/internal/domains/auction/model"
	"auctionhouse-backend/internal/domains/auction/repository"
	notifmodel "auctionhouse-backend/internal/domains/notification/model"
	notifsvc "auctionhouse-backend/internal/domains/notification/service"
	"auctionhouse-backend/internal/infrastructure/realtime"
	"auctionhouse-backend/internal/shared"
	"auctionhouse-backend/pkg/cache"
	"auctionhouse-backend/pkg/logger"
)

// WatcherLister exposes the watchlist side of ending-soon fan-out without
// pulling the whole watchlist repository in.
type WatcherLister interface {
	ListWatcherIDs(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error)
}

type resolutionService struct {
	repo       repository.AuctionRepository
	dispatcher notifsvc.Dispatcher
	publisher  realtime.Publisher
	queue      notifsvc.TaskEnqueuer
	cache      cache.Cache
	watchers   WatcherLister
}

func NewResolutionService(
	repo repository.AuctionRepository,
	dispatcher notifsvc.Dispatcher,
	publisher realtime.Publisher,
	queue notifsvc.TaskEnqueuer,
	c cache.Cache,
	watchers WatcherLister,
) ResolutionService {
	return &resolutionService{
		repo:       repo,
		dispatcher: dispatcher,
		publisher:  publisher,
		queue:      queue,
		cache:      c,
		watchers:   watchers,
	}
}

// ================================================
// EXPIRED AUCTION SWEEP
// ================================================

func (s *resolutionService) ResolveExpired(ctx context.Context, batchSize int) (int, error) {
	if batchSize < 1 {
		batchSize = 100
	}

	items, err := s.repo.ListExpiredActive(ctx, time.Now(), batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired auctions: %w", err)
	}

	resolved := 0
	for i := range items {
		item := items[i]
		_, claimed, err := s.ResolveItem(ctx, &item)
		if err != nil {
			// Leave the item for the next sweep; one failure must not
			// stall the batch.
			logger.Error("Failed to resolve auction", err)
			continue
		}
		if claimed {
			resolved++
		}
	}

	if len(items) > 0 {
		logger.Info("Resolution sweep finished", map[string]interface{}{
			"candidates": len(items),
			"resolved":   resolved,
		})
	}

	return resolved, nil
}

// ResolveItem computes the outcome from the bid ledger, then claims the
// active -> ended transition with a conditional update. Side effects run
// only for the invocation that won the claim, so each auction resolves and
// notifies exactly once.
func (s *resolutionService) ResolveItem(ctx context.Context, item *model.AuctionItem) (*model.ResolutionResult, bool, error) {
	// Pin the item version before reading the ledger. The claim below is
	// conditional on this version, so an outcome computed here can never
	// land after a late bid commits: the bid bumps the version and the
	// claim falls through to the next sweep.
	current, err := s.repo.GetItemByID(ctx, item.ID)
	if err != nil {
		return nil, false, err
	}
	if current.Status != model.StatusActive {
		return nil, false, nil
	}

	winning, err := s.repo.GetWinningBid(ctx, current.ID)
	if err != nil {
		return nil, false, err
	}

	result := &model.ResolutionResult{
		AuctionItemID: current.ID,
		SellerID:      current.SellerID,
		HadBids:       winning != nil,
	}

	if winning != nil {
		// The winner is recorded whether or not the reserve was met;
		// ReserveMet alone decides whether a sale obligation exists.
		result.ReserveMet = current.ReservePrice == nil || winning.BidAmount.GreaterThanOrEqual(*current.ReservePrice)
		winnerID := winning.BidderID
		price := winning.BidAmount
		result.WinnerID = &winnerID
		result.FinalSellingPrice = &price
	}

	reserveMet := result.ReserveMet
	claimed, err := s.repo.MarkEnded(ctx, current.ID, current.Version, result.WinnerID, result.FinalSellingPrice, &reserveMet)
	if err != nil {
		return nil, false, err
	}
	if !claimed {
		logger.Debug("Auction resolution claim lost, leaving for next sweep", map[string]interface{}{
			"auction_id": current.ID,
		})
		return nil, false, nil
	}

	s.afterResolved(ctx, current, result)
	return result, true, nil
}

func (s *resolutionService) afterResolved(ctx context.Context, item *model.AuctionItem, result *model.ResolutionResult) {
	if err := s.cache.Delete(ctx, snapshotCacheKey(item.ID)); err != nil {
		logger.Warn("Snapshot cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}

	// Re-read for the post-resolution version and final fields.
	ended, err := s.repo.GetItemByID(ctx, item.ID)
	if err != nil {
		logger.Error("Failed to re-read resolved auction", err)
		ended = item
	}
	snapshot := model.BuildSnapshot(ended, time.Now())

	sold := result.WinnerID != nil && result.ReserveMet
	event := &realtime.Event{
		Type:          realtime.EventAuctionSold,
		AuctionItemID: item.ID,
		Version:       snapshot.Version,
		Snapshot:      snapshot,
		Sold:          sold,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish resolution event", err)
	}

	s.notifyResolved(ctx, item, result)

	if sold {
		payload := shared.PaymentHandoffPayload{
			AuctionID:         item.ID,
			WinnerID:          *result.WinnerID,
			FinalSellingPrice: *result.FinalSellingPrice,
		}
		err := s.queue.Enqueue(ctx, shared.TypeInitiatePaymentCharge, payload,
			asynq.Queue(shared.QueuePayment),
			asynq.MaxRetry(10),
		)
		if err != nil {
			logger.Error("Failed to enqueue payment handoff", err)
		}
	}

	logger.Info("Auction resolved", map[string]interface{}{
		"auction_id":  item.ID,
		"sold":        sold,
		"had_bids":    result.HadBids,
		"reserve_met": result.ReserveMet,
	})
}

func (s *resolutionService) notifyResolved(ctx context.Context, item *model.AuctionItem, result *model.ResolutionResult) {
	itemID := item.ID

	// A winner below the reserve has no sale obligation and gets no
	// won_auction notice.
	if result.WinnerID != nil && result.ReserveMet {
		_, err := s.dispatcher.Dispatch(ctx, &notifsvc.DispatchInput{
			UserID:         *result.WinnerID,
			Type:           notifmodel.TypeAuctionWon,
			Title:          "You won the auction",
			Message:        fmt.Sprintf("You won %q for %s.", item.Title, result.FinalSellingPrice.StringFixed(2)),
			AuctionItemID:  &itemID,
			IdempotencyKey: notifsvc.WonKey(itemID),
		})
		if err != nil {
			logger.Error("Failed to dispatch winner notification", err)
		}
	}

	sellerMessage := fmt.Sprintf("Your auction %q ended without a sale.", item.Title)
	if result.WinnerID != nil && result.ReserveMet {
		sellerMessage = fmt.Sprintf("Your auction %q sold for %s.", item.Title, result.FinalSellingPrice.StringFixed(2))
	} else if result.HadBids {
		sellerMessage = fmt.Sprintf("Your auction %q ended below the reserve price.", item.Title)
	}

	_, err := s.dispatcher.Dispatch(ctx, &notifsvc.DispatchInput{
		UserID:         item.SellerID,
		Type:           notifmodel.TypeAuctionSold,
		Title:          "Your auction has ended",
		Message:        sellerMessage,
		AuctionItemID:  &itemID,
		IdempotencyKey: notifsvc.SoldKey(itemID),
	})
	if err != nil {
		logger.Error("Failed to dispatch seller notification", err)
	}
}

// ================================================
// ENDING SOON SWEEP
// ================================================

func (s *resolutionService) NotifyEndingSoon(ctx context.Context, windowMinutes int) (int, error) {
	if windowMinutes < 1 {
		windowMinutes = 10
	}

	now := time.Now()
	until := now.Add(time.Duration(windowMinutes) * time.Minute)

	items, err := s.repo.ListEndingSoon(ctx, now, until)
	if err != nil {
		return 0, fmt.Errorf("failed to list ending auctions: %w", err)
	}

	created := 0
	for i := range items {
		item := items[i]

		recipients, err := s.endingSoonRecipients(ctx, item.ID)
		if err != nil {
			logger.Error("Failed to list ending-soon recipients", err)
			continue
		}

		for _, userID := range recipients {
			ok, err := s.dispatchEndingSoon(ctx, &item, userID, now)
			if err != nil {
				logger.Error("Failed to dispatch ending-soon notification", err)
				continue
			}
			if ok {
				created++
			}
		}
	}

	return created, nil
}

// endingSoonRecipients merges active bidders with watchlist followers,
// deduplicated so nobody is counted twice.
func (s *resolutionService) endingSoonRecipients(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	bidders, err := s.repo.ListItemBidderIDs(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list auction bidders: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(bidders))
	recipients := make([]uuid.UUID, 0, len(bidders))
	for _, id := range bidders {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}

	if s.watchers != nil {
		watchers, err := s.watchers.ListWatcherIDs(ctx, itemID)
		if err != nil {
			return nil, fmt.Errorf("failed to list auction watchers: %w", err)
		}
		for _, id := range watchers {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			recipients = append(recipients, id)
		}
	}

	return recipients, nil
}

func (s *resolutionService) dispatchEndingSoon(ctx context.Context, item *model.AuctionItem, bidderID uuid.UUID, now time.Time) (bool, error) {
	remaining := model.TimeRemaining(now, item.EndDate)
	itemID := item.ID

	return s.dispatcher.Dispatch(ctx, &notifsvc.DispatchInput{
		UserID:         bidderID,
		Type:           notifmodel.TypeAuctionEnding,
		Title:          "Auction ending soon",
		Message:        fmt.Sprintf("%q closes in about %d minutes.", item.Title, int(remaining.Minutes())+1),
		AuctionItemID:  &itemID,
		IdempotencyKey: notifsvc.EndingSoonKey(itemID, bidderID),
	})
}
