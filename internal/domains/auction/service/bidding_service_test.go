package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"auctionhouse-backend/internal/domains/auction/model"
	notifmodel "auctionhouse-backend/internal/domains/notification/model"
	"auctionhouse-backend/internal/infrastructure/realtime"
)

type biddingFixture struct {
	repo       *fakeAuctionRepo
	dispatcher *fakeDispatcher
	publisher  *fakePublisher
	cache      *fakeCache
	watchers   *fakeWatcherLister
	svc        BiddingService
}

func newBiddingFixture(t *testing.T, snapshotTTL time.Duration) *biddingFixture {
	t.Helper()
	f := &biddingFixture{
		repo:       newFakeAuctionRepo(),
		dispatcher: newFakeDispatcher(),
		publisher:  &fakePublisher{},
		cache:      newFakeCache(),
		watchers:   &fakeWatcherLister{watchers: make(map[uuid.UUID][]uuid.UUID)},
	}
	f.svc = NewBiddingService(f.repo, f.dispatcher, f.publisher, f.cache, f.watchers, snapshotTTL)
	return f
}

func activeItem(sellerID uuid.UUID, starting, increment string, endIn time.Duration) *model.AuctionItem {
	return &model.AuctionItem{
		ID:           uuid.New(),
		SellerID:     sellerID,
		Title:        "First edition print",
		StartingBid:  decimal.RequireFromString(starting),
		BidIncrement: decimal.RequireFromString(increment),
		Status:       model.StatusActive,
		EndDate:      time.Now().Add(endIn),
	}
}

func bidReq(amount string) *model.PlaceBidRequest {
	return &model.PlaceBidRequest{Amount: decimal.RequireFromString(amount)}
}

func TestPlaceBid_FirstBidAtStartingBid(t *testing.T) {
	f := newBiddingFixture(t, 0)
	seller := uuid.New()
	bidder := uuid.New()
	item := activeItem(seller, "100", "5", time.Hour)
	f.repo.putItem(item)

	resp, err := f.svc.PlaceBid(context.Background(), item.ID, bidder, bidReq("100"))
	require.NoError(t, err)
	require.True(t, resp.Bid.BidAmount.Equal(decimal.RequireFromString("100")))
	require.Equal(t, 1, resp.Snapshot.BidCount)
	require.True(t, resp.Snapshot.MinimumNextBid.Equal(decimal.RequireFromString("105")))
	require.Equal(t, int64(1), resp.Snapshot.Version)

	stored := f.repo.snapshotOf(item.ID)
	require.NotNil(t, stored.CurrentBid)
	require.Equal(t, bidder, *stored.HighestBidderID)
}

func TestPlaceBid_FirstBidBelowStartingBid(t *testing.T) {
	f := newBiddingFixture(t, 0)
	item := activeItem(uuid.New(), "100", "5", time.Hour)
	f.repo.putItem(item)

	_, err := f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), bidReq("99.99"))

	var tooLow *model.BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	require.True(t, tooLow.MinimumBid.Equal(decimal.RequireFromString("100")))
	require.ErrorIs(t, err, model.ErrBidTooLow)
}

func TestPlaceBid_SubsequentBidNeedsIncrement(t *testing.T) {
	f := newBiddingFixture(t, 0)
	item := activeItem(uuid.New(), "100", "5", time.Hour)
	f.repo.putItem(item)

	_, err := f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), bidReq("100"))
	require.NoError(t, err)

	// The leading bid alone is no longer enough.
	_, err = f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), bidReq("103"))
	var tooLow *model.BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	require.True(t, tooLow.MinimumBid.Equal(decimal.RequireFromString("105")))

	_, err = f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), bidReq("105"))
	require.NoError(t, err)
}

func TestPlaceBid_SellerCannotBid(t *testing.T) {
	f := newBiddingFixture(t, 0)
	seller := uuid.New()
	item := activeItem(seller, "100", "5", time.Hour)
	f.repo.putItem(item)

	_, err := f.svc.PlaceBid(context.Background(), item.ID, seller, bidReq("100"))
	require.ErrorIs(t, err, model.ErrSellerCannotBid)
}

func TestPlaceBid_ClosedAuction(t *testing.T) {
	f := newBiddingFixture(t, 0)

	pastEnd := activeItem(uuid.New(), "100", "5", -time.Minute)
	f.repo.putItem(pastEnd)

	ended := activeItem(uuid.New(), "100", "5", time.Hour)
	ended.Status = model.StatusEnded
	f.repo.putItem(ended)

	draft := activeItem(uuid.New(), "100", "5", time.Hour)
	draft.Status = model.StatusDraft
	f.repo.putItem(draft)

	for _, item := range []*model.AuctionItem{pastEnd, ended, draft} {
		_, err := f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), bidReq("100"))
		require.ErrorIs(t, err, model.ErrAuctionClosed)
	}
}

func TestPlaceBid_InvalidAmount(t *testing.T) {
	f := newBiddingFixture(t, 0)
	item := activeItem(uuid.New(), "100", "5", time.Hour)
	f.repo.putItem(item)

	for _, amount := range []string{"0", "-10"} {
		_, err := f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), bidReq(amount))
		require.ErrorIs(t, err, model.ErrInvalidAmount, "amount %s", amount)
	}
}

func TestPlaceBid_UnknownAuction(t *testing.T) {
	f := newBiddingFixture(t, 0)

	_, err := f.svc.PlaceBid(context.Background(), uuid.New(), uuid.New(), bidReq("100"))
	require.ErrorIs(t, err, model.ErrAuctionNotFound)
}

func TestPlaceBid_CheckPrecedence(t *testing.T) {
	f := newBiddingFixture(t, 0)
	seller := uuid.New()

	// A bad amount against a missing item reports the missing item.
	_, err := f.svc.PlaceBid(context.Background(), uuid.New(), uuid.New(), bidReq("-1"))
	require.ErrorIs(t, err, model.ErrAuctionNotFound)

	// A seller bidding on their own closed auction sees the closure first.
	closed := activeItem(seller, "100", "5", -time.Minute)
	f.repo.putItem(closed)
	_, err = f.svc.PlaceBid(context.Background(), closed.ID, seller, bidReq("200"))
	require.ErrorIs(t, err, model.ErrAuctionClosed)
}

func TestPlaceBid_OutbidNotification(t *testing.T) {
	f := newBiddingFixture(t, 0)
	item := activeItem(uuid.New(), "100", "5", time.Hour)
	f.repo.putItem(item)

	alice := uuid.New()
	bob := uuid.New()

	_, err := f.svc.PlaceBid(context.Background(), item.ID, alice, bidReq("100"))
	require.NoError(t, err)
	require.Empty(t, f.dispatcher.byType(notifmodel.TypeOutbid), "first bid displaces nobody")

	// Alice raising her own leading bid is not a displacement.
	_, err = f.svc.PlaceBid(context.Background(), item.ID, alice, bidReq("110"))
	require.NoError(t, err)
	require.Empty(t, f.dispatcher.byType(notifmodel.TypeOutbid))

	_, err = f.svc.PlaceBid(context.Background(), item.ID, bob, bidReq("120"))
	require.NoError(t, err)

	outbids := f.dispatcher.byType(notifmodel.TypeOutbid)
	require.Len(t, outbids, 1)
	require.Equal(t, alice, outbids[0].UserID)
}

func TestPlaceBid_PublishesVersionedEvent(t *testing.T) {
	f := newBiddingFixture(t, 0)
	item := activeItem(uuid.New(), "100", "5", time.Hour)
	f.repo.putItem(item)

	_, err := f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), bidReq("100"))
	require.NoError(t, err)
	_, err = f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), bidReq("105"))
	require.NoError(t, err)

	events := f.publisher.all()
	require.Len(t, events, 2)
	for i, ev := range events {
		require.Equal(t, realtime.EventBidAccepted, ev.Type)
		require.Equal(t, item.ID, ev.AuctionItemID)
		require.Equal(t, int64(i+1), ev.Version)
		require.NotNil(t, ev.Snapshot)
	}
}

func TestPlaceBid_ConcurrentBiddersSerialized(t *testing.T) {
	f := newBiddingFixture(t, 0)
	item := activeItem(uuid.New(), "100", "1", time.Hour)
	f.repo.putItem(item)

	const bidders = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	tooLow := 0

	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			amount := decimal.NewFromInt(int64(100 + n))
			_, err := f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), &model.PlaceBidRequest{Amount: amount})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, model.ErrBidTooLow):
				tooLow++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, bidders, accepted+tooLow)
	require.GreaterOrEqual(t, accepted, 1)

	stored := f.repo.snapshotOf(item.ID)
	require.Equal(t, accepted, stored.BidCount)
	require.Equal(t, int64(accepted), stored.Version)

	// The projection must match the ledger maximum exactly.
	winning, err := f.repo.GetWinningBid(context.Background(), item.ID)
	require.NoError(t, err)
	require.True(t, stored.CurrentBid.Equal(winning.BidAmount))
}

func TestPlaceBid_RetriesSerializationFailures(t *testing.T) {
	f := newBiddingFixture(t, 0)
	item := activeItem(uuid.New(), "100", "5", time.Hour)
	f.repo.putItem(item)

	serErr := &pgconn.PgError{Code: "40001"}
	f.repo.commitErrs = []error{fmt.Errorf("commit: %w", serErr), fmt.Errorf("commit: %w", serErr)}

	_, err := f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), bidReq("100"))
	require.NoError(t, err)
}

func TestPlaceBid_ConflictAfterRetriesExhausted(t *testing.T) {
	f := newBiddingFixture(t, 0)
	item := activeItem(uuid.New(), "100", "5", time.Hour)
	f.repo.putItem(item)

	serErr := &pgconn.PgError{Code: "40P01"}
	f.repo.commitErrs = []error{serErr, serErr, serErr}

	_, err := f.svc.PlaceBid(context.Background(), item.ID, uuid.New(), bidReq("100"))
	require.ErrorIs(t, err, model.ErrConflict)

	var auctionErr *model.AuctionError
	require.ErrorAs(t, err, &auctionErr)
	require.Equal(t, model.ErrCodeConflict, auctionErr.Code)
}

func TestGetSnapshot_ServesCachedCopy(t *testing.T) {
	f := newBiddingFixture(t, 2*time.Second)
	item := activeItem(uuid.New(), "100", "5", time.Hour)
	f.repo.putItem(item)

	first, err := f.svc.GetSnapshot(context.Background(), item.ID)
	require.NoError(t, err)

	// Mutate the store behind the cache; the cached copy should win until
	// a bid invalidates it.
	mutated := f.repo.snapshotOf(item.ID)
	amt := decimal.RequireFromString("100")
	mutated.CurrentBid = &amt
	mutated.Version++
	f.repo.putItem(&mutated)

	second, err := f.svc.GetSnapshot(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, first.Version, second.Version)
	require.Nil(t, second.CurrentBid)
}

func TestGetSnapshot_NotFound(t *testing.T) {
	f := newBiddingFixture(t, 0)

	_, err := f.svc.GetSnapshot(context.Background(), uuid.New())
	require.ErrorIs(t, err, model.ErrAuctionNotFound)
}

func TestCreateAuction_DraftAndPublishNow(t *testing.T) {
	f := newBiddingFixture(t, 0)
	seller := uuid.New()

	req := &model.CreateAuctionRequest{
		Title:        "Walnut writing desk",
		StartingBid:  decimal.RequireFromString("250"),
		BidIncrement: decimal.RequireFromString("10"),
		EndDate:      time.Now().Add(48 * time.Hour),
	}

	draft, err := f.svc.CreateAuction(context.Background(), seller, req)
	require.NoError(t, err)
	require.Equal(t, model.StatusDraft, draft.Status)

	req.PublishNow = true
	live, err := f.svc.CreateAuction(context.Background(), seller, req)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, live.Status)
	require.Equal(t, int64(0), live.Version)
}

func TestActivateAuction(t *testing.T) {
	f := newBiddingFixture(t, 0)
	seller := uuid.New()
	watcher := uuid.New()

	item := activeItem(seller, "100", "5", time.Hour)
	item.Status = model.StatusDraft
	f.repo.putItem(item)
	// The seller watching their own listing must not self-notify.
	f.watchers.watchers[item.ID] = []uuid.UUID{watcher, seller}

	_, err := f.svc.ActivateAuction(context.Background(), item.ID, uuid.New())
	require.ErrorIs(t, err, model.ErrUnauthorized)

	activated, err := f.svc.ActivateAuction(context.Background(), item.ID, seller)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, activated.Status)

	events := f.publisher.all()
	require.Len(t, events, 1)
	require.Equal(t, realtime.EventStatusChanged, events[0].Type)
	require.Equal(t, activated.Version, events[0].Version)

	live := f.dispatcher.byType(notifmodel.TypeAuctionLive)
	require.Len(t, live, 1)
	require.Equal(t, watcher, live[0].UserID)
	require.Equal(t, item.ID, *live[0].AuctionItemID)

	// Active items cannot be re-activated.
	_, err = f.svc.ActivateAuction(context.Background(), item.ID, seller)
	require.ErrorIs(t, err, model.ErrInvalidStatus)
}
