package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"auctionhouse-backend/internal/domains/auction/model"
	"auctionhouse-backend/internal/domains/auction/repository"
	notifmodel "auctionhouse-backend/internal/domains/notification/model"
	notifsvc "auctionhouse-backend/internal/domains/notification/service"
	"auctionhouse-backend/internal/infrastructure/realtime"
	"auctionhouse-backend/pkg/cache"
	"auctionhouse-backend/pkg/logger"
)

const placeBidMaxAttempts = 3

type biddingService struct {
	repo        repository.AuctionRepository
	dispatcher  notifsvc.Dispatcher
	publisher   realtime.Publisher
	cache       cache.Cache
	watchers    WatcherLister
	snapshotTTL time.Duration
}

func NewBiddingService(
	repo repository.AuctionRepository,
	dispatcher notifsvc.Dispatcher,
	publisher realtime.Publisher,
	c cache.Cache,
	watchers WatcherLister,
	snapshotTTL time.Duration,
) BiddingService {
	return &biddingService{
		repo:        repo,
		dispatcher:  dispatcher,
		publisher:   publisher,
		cache:       c,
		watchers:    watchers,
		snapshotTTL: snapshotTTL,
	}
}

func snapshotCacheKey(itemID uuid.UUID) string {
	return fmt.Sprintf("auction:snapshot:%s", itemID)
}

// ================================================
// AUCTION LIFECYCLE
// ================================================

func (s *biddingService) CreateAuction(ctx context.Context, sellerID uuid.UUID, req *model.CreateAuctionRequest) (*model.AuctionItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := model.StatusDraft
	if req.PublishNow {
		status = model.StatusActive
	}

	item := &model.AuctionItem{
		SellerID:     sellerID,
		Title:        req.Title,
		Description:  req.Description,
		StartingBid:  req.StartingBid,
		BidIncrement: req.BidIncrement,
		ReservePrice: req.ReservePrice,
		Status:       status,
		EndDate:      req.EndDate,
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	logger.Info("Auction created", map[string]interface{}{
		"auction_id": item.ID,
		"seller_id":  sellerID,
		"status":     item.Status,
	})

	return item, nil
}

func (s *biddingService) ActivateAuction(ctx context.Context, itemID, sellerID uuid.UUID) (*model.AuctionItem, error) {
	item, err := s.repo.ActivateItem(ctx, itemID, sellerID)
	if err != nil {
		if errors.Is(err, model.ErrInvalidStatus) {
			// Disambiguate for the handler: missing item, foreign item,
			// or a non-draft status.
			existing, getErr := s.repo.GetItemByID(ctx, itemID)
			if getErr != nil {
				return nil, getErr
			}
			if existing.SellerID != sellerID {
				return nil, model.ErrUnauthorized
			}
			return nil, model.ErrInvalidStatus
		}
		return nil, fmt.Errorf("failed to activate auction: %w", err)
	}

	s.afterActivated(ctx, item)

	logger.Info("Auction activated", map[string]interface{}{
		"auction_id": itemID,
		"end_date":   item.EndDate,
	})

	return item, nil
}

// afterActivated pushes the status change to subscribers and tells watchers
// the listing is open for bids. The activation itself is already committed;
// failures here are logged and dropped.
func (s *biddingService) afterActivated(ctx context.Context, item *model.AuctionItem) {
	snapshot := model.BuildSnapshot(item, time.Now())

	event := &realtime.Event{
		Type:          realtime.EventStatusChanged,
		AuctionItemID: item.ID,
		Version:       item.Version,
		Snapshot:      snapshot,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish activation event", err)
	}

	if s.watchers == nil {
		return
	}
	watcherIDs, err := s.watchers.ListWatcherIDs(ctx, item.ID)
	if err != nil {
		logger.Error("Failed to list auction watchers", err)
		return
	}
	for _, watcherID := range watcherIDs {
		if watcherID == item.SellerID {
			continue
		}
		itemID := item.ID
		_, err := s.dispatcher.Dispatch(ctx, &notifsvc.DispatchInput{
			UserID:         watcherID,
			Type:           notifmodel.TypeAuctionLive,
			Title:          "Auction is live",
			Message:        fmt.Sprintf("Bidding is open on %q.", item.Title),
			AuctionItemID:  &itemID,
			IdempotencyKey: notifsvc.LiveKey(itemID, watcherID),
		})
		if err != nil {
			logger.Error("Failed to dispatch auction-live notification", err)
		}
	}
}

// ================================================
// BIDDING VIEW
// ================================================

func (s *biddingService) GetSnapshot(ctx context.Context, itemID uuid.UUID) (*model.AuctionItemSnapshot, error) {
	key := snapshotCacheKey(itemID)

	if s.snapshotTTL > 0 {
		var cached model.AuctionItemSnapshot
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("Snapshot cache read failed", map[string]interface{}{"error": err.Error()})
		} else if found {
			return &cached, nil
		}
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	snapshot := model.BuildSnapshot(item, time.Now())

	if s.snapshotTTL > 0 {
		if err := s.cache.Set(ctx, key, snapshot, s.snapshotTTL); err != nil {
			logger.Warn("Snapshot cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return snapshot, nil
}

func (s *biddingService) ListBids(ctx context.Context, itemID uuid.UUID, page, limit int) ([]model.Bid, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	// Existence check keeps 404 distinct from an empty ledger.
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}

	bids, err := s.repo.ListBidsByItem(ctx, itemID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bids: %w", err)
	}

	return bids, item.BidCount, nil
}

// ================================================
// BID ACCEPTANCE
// ================================================

// PlaceBid runs the check-and-commit sequence under the item's row lock, so
// two bids for the same item are validated strictly one after the other.
// Serialization failures are retried a bounded number of times before
// surfacing as ErrConflict.
func (s *biddingService) PlaceBid(ctx context.Context, itemID, bidderID uuid.UUID, req *model.PlaceBidRequest) (*model.BidAcceptedResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= placeBidMaxAttempts; attempt++ {
		resp, displaced, err := s.placeBidOnce(ctx, itemID, bidderID, req)
		if err == nil {
			s.afterBidAccepted(ctx, resp, displaced, bidderID)
			return resp, nil
		}
		if !isSerializationError(err) {
			return nil, err
		}

		lastErr = err
		logger.Warn("Bid transaction serialization failure, retrying", map[string]interface{}{
			"auction_id": itemID,
			"attempt":    attempt,
		})
	}

	return nil, model.NewAuctionError(model.ErrCodeConflict, "bid could not be accepted under contention", errors.Join(model.ErrConflict, lastErr))
}

func (s *biddingService) placeBidOnce(ctx context.Context, itemID, bidderID uuid.UUID, req *model.PlaceBidRequest) (*model.BidAcceptedResponse, *uuid.UUID, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin bid transaction: %w", err)
	}
	defer s.repo.RollbackTx(ctx, tx)

	item, err := s.repo.GetItemForUpdateTx(ctx, tx, itemID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	if !item.IsOpenForBids(now) {
		return nil, nil, model.ErrAuctionClosed
	}
	if item.SellerID == bidderID {
		return nil, nil, model.ErrSellerCannotBid
	}
	if err := req.Validate(); err != nil {
		return nil, nil, model.ErrInvalidAmount
	}
	if minimum := item.MinimumNextBid(); req.Amount.LessThan(minimum) {
		return nil, nil, &model.BidTooLowError{MinimumBid: minimum}
	}

	// Remember who is being displaced before the projection moves.
	var displaced *uuid.UUID
	if item.HighestBidderID != nil && *item.HighestBidderID != bidderID {
		prev := *item.HighestBidderID
		displaced = &prev
	}

	bid := &model.Bid{
		AuctionItemID: itemID,
		BidderID:      bidderID,
		BidAmount:     req.Amount,
	}
	if err := s.repo.InsertBidTx(ctx, tx, bid); err != nil {
		return nil, nil, err
	}

	updated, err := s.repo.ApplyBidTx(ctx, tx, itemID, req.Amount, bidderID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.CommitTx(ctx, tx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit bid transaction: %w", err)
	}

	resp := &model.BidAcceptedResponse{
		Bid:      bid,
		Snapshot: model.BuildSnapshot(updated, now),
	}
	return resp, displaced, nil
}

// afterBidAccepted runs the post-commit side effects. None of them can undo
// the accepted bid; failures are logged and dropped.
func (s *biddingService) afterBidAccepted(ctx context.Context, resp *model.BidAcceptedResponse, displaced *uuid.UUID, bidderID uuid.UUID) {
	itemID := resp.Bid.AuctionItemID

	if err := s.cache.Delete(ctx, snapshotCacheKey(itemID)); err != nil {
		logger.Warn("Snapshot cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}

	event := &realtime.Event{
		Type:          realtime.EventBidAccepted,
		AuctionItemID: itemID,
		Version:       resp.Snapshot.Version,
		Snapshot:      resp.Snapshot,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish bid event", err)
	}

	if displaced != nil {
		_, err := s.dispatcher.Dispatch(ctx, &notifsvc.DispatchInput{
			UserID:         *displaced,
			Type:           notifmodel.TypeOutbid,
			Title:          "You have been outbid",
			Message:        fmt.Sprintf("A new bid of %s leads the auction %q.", resp.Bid.BidAmount.StringFixed(2), resp.Snapshot.Title),
			AuctionItemID:  &itemID,
			IdempotencyKey: notifsvc.OutbidKey(itemID, resp.Bid.ID),
		})
		if err != nil {
			logger.Error("Failed to dispatch outbid notification", err)
		}
	}

	logger.Info("Bid accepted", map[string]interface{}{
		"auction_id": itemID,
		"bid_id":     resp.Bid.ID,
		"bidder_id":  bidderID,
		"amount":     resp.Bid.BidAmount.String(),
		"version":    resp.Snapshot.Version,
	})
}

// isSerializationError reports whether the failure came from transaction
// contention (serialization failure or deadlock) and is worth retrying.
func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
