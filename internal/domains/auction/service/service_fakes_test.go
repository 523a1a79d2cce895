package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"auctionhouse-backend/internal/domains/auction/model"
	notifsvc "auctionhouse-backend/internal/domains/notification/service"
	"auctionhouse-backend/internal/infrastructure/realtime"
)

// ================================================
// FAKE AUCTION REPOSITORY
// ================================================

// fakeTx satisfies pgx.Tx by embedding; only the repo fake ever touches it.
// Writes stage here and land in the store at commit, so an injected commit
// failure leaves no trace, like a real rollback.
type fakeTx struct {
	pgx.Tx
	release    func()
	stagedBids []model.Bid
	stagedItem *model.AuctionItem
}

// fakeAuctionRepo keeps items and the bid ledger in memory. BeginTx takes a
// repo-wide lock released on commit or rollback, mirroring the row-lock
// serialization the real implementation gets from FOR UPDATE.
type fakeAuctionRepo struct {
	txMu sync.Mutex

	mu    sync.Mutex
	items map[uuid.UUID]*model.AuctionItem
	bids  map[uuid.UUID][]model.Bid
	clock time.Time

	// commitErrs are popped one per CommitTx call to inject failures.
	commitErrs []error

	// afterWinningBid, when set, runs once after a GetWinningBid read
	// returns, letting a test commit a bid between the ledger read and
	// the resolution claim.
	afterWinningBid func()
}

func newFakeAuctionRepo() *fakeAuctionRepo {
	return &fakeAuctionRepo{
		items: make(map[uuid.UUID]*model.AuctionItem),
		bids:  make(map[uuid.UUID][]model.Bid),
		clock: time.Now(),
	}
}

func (r *fakeAuctionRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Millisecond)
	return r.clock
}

func (r *fakeAuctionRepo) putItem(item *model.AuctionItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.items[item.ID] = &cp
}

func (r *fakeAuctionRepo) snapshotOf(id uuid.UUID) model.AuctionItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.items[id]
}

func (r *fakeAuctionRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	r.txMu.Lock()
	var once sync.Once
	return &fakeTx{release: func() { once.Do(r.txMu.Unlock) }}, nil
}

func (r *fakeAuctionRepo) CommitTx(ctx context.Context, tx pgx.Tx) error {
	ftx := tx.(*fakeTx)
	defer ftx.release()

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.commitErrs) > 0 {
		err := r.commitErrs[0]
		r.commitErrs = r.commitErrs[1:]
		return err
	}

	for _, b := range ftx.stagedBids {
		r.bids[b.AuctionItemID] = append(r.bids[b.AuctionItemID], b)
	}
	if ftx.stagedItem != nil {
		cp := *ftx.stagedItem
		r.items[cp.ID] = &cp
	}
	return nil
}

func (r *fakeAuctionRepo) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	tx.(*fakeTx).release()
	return nil
}

func (r *fakeAuctionRepo) CreateItem(ctx context.Context, item *model.AuctionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = r.tick()
	item.UpdatedAt = item.CreatedAt
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeAuctionRepo) GetItemByID(ctx context.Context, id uuid.UUID) (*model.AuctionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, model.ErrAuctionNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeAuctionRepo) GetItemForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.AuctionItem, error) {
	return r.GetItemByID(ctx, id)
}

func (r *fakeAuctionRepo) InsertBidTx(ctx context.Context, tx pgx.Tx, bid *model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}
	bid.CreatedAt = r.tick()
	ftx := tx.(*fakeTx)
	ftx.stagedBids = append(ftx.stagedBids, *bid)
	return nil
}

func (r *fakeAuctionRepo) ApplyBidTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, amount decimal.Decimal, bidderID uuid.UUID) (*model.AuctionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, model.ErrAuctionNotFound
	}
	updated := *item
	amt := amount
	bidder := bidderID
	updated.CurrentBid = &amt
	updated.HighestBidderID = &bidder
	updated.BidCount++
	updated.Version++
	updated.UpdatedAt = r.tick()

	tx.(*fakeTx).stagedItem = &updated
	cp := updated
	return &cp, nil
}

func (r *fakeAuctionRepo) ActivateItem(ctx context.Context, itemID, sellerID uuid.UUID) (*model.AuctionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok || item.SellerID != sellerID || item.Status != model.StatusDraft {
		return nil, model.ErrInvalidStatus
	}
	item.Status = model.StatusActive
	item.Version++
	cp := *item
	return &cp, nil
}

func (r *fakeAuctionRepo) ListBidsByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledger := r.bids[itemID]
	out := make([]model.Bid, 0, len(ledger))
	for i := len(ledger) - 1; i >= 0; i-- {
		out = append(out, ledger[i])
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAuctionRepo) GetWinningBid(ctx context.Context, itemID uuid.UUID) (*model.Bid, error) {
	r.mu.Lock()
	var winning *model.Bid
	for i := range r.bids[itemID] {
		b := r.bids[itemID][i]
		if winning == nil ||
			b.BidAmount.GreaterThan(winning.BidAmount) ||
			(b.BidAmount.Equal(winning.BidAmount) && b.CreatedAt.Before(winning.CreatedAt)) {
			cp := b
			winning = &cp
		}
	}
	hook := r.afterWinningBid
	r.afterWinningBid = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return winning, nil
}

func (r *fakeAuctionRepo) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]model.AuctionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuctionItem
	for _, item := range r.items {
		if item.Status == model.StatusActive && !item.EndDate.After(now) {
			out = append(out, *item)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeAuctionRepo) MarkEnded(ctx context.Context, itemID uuid.UUID, expectedVersion int64, winnerID *uuid.UUID, finalPrice *decimal.Decimal, reserveMet *bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok || item.Status != model.StatusActive || item.Version != expectedVersion {
		return false, nil
	}
	item.Status = model.StatusEnded
	item.WinnerID = winnerID
	item.FinalSellingPrice = finalPrice
	item.ReserveMet = reserveMet
	item.Version++
	item.UpdatedAt = r.tick()
	return true, nil
}

func (r *fakeAuctionRepo) ListEndingSoon(ctx context.Context, now, until time.Time) ([]model.AuctionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuctionItem
	for _, item := range r.items {
		if item.Status == model.StatusActive && item.BidCount > 0 &&
			item.EndDate.After(now) && !item.EndDate.After(until) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeAuctionRepo) ListItemBidderIDs(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, b := range r.bids[itemID] {
		if !seen[b.BidderID] {
			seen[b.BidderID] = true
			out = append(out, b.BidderID)
		}
	}
	return out, nil
}

// ================================================
// FAKE COLLABORATORS
// ================================================

type fakeDispatcher struct {
	mu     sync.Mutex
	keys   map[string]bool
	inputs []notifsvc.DispatchInput
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{keys: make(map[string]bool)}
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, input *notifsvc.DispatchInput) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.keys[input.IdempotencyKey] {
		return false, nil
	}
	d.keys[input.IdempotencyKey] = true
	d.inputs = append(d.inputs, *input)
	return true, nil
}

func (d *fakeDispatcher) byType(notifType string) []notifsvc.DispatchInput {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []notifsvc.DispatchInput
	for _, in := range d.inputs {
		if in.Type == notifType {
			out = append(out, in)
		}
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *fakePublisher) Publish(ctx context.Context, event *realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *fakePublisher) all() []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]realtime.Event, len(p.events))
	copy(out, p.events)
	return out
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []struct {
		Type    string
		Payload interface{}
	}
}

func (e *fakeEnqueuer) Enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, struct {
		Type    string
		Payload interface{}
	}{taskType, payload})
	return nil
}

// fakeCache stores JSON-encoded values without expiry; TTL handling itself
// belongs to redis.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.store, k)
	}
	return nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }
