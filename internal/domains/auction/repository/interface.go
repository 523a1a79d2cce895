package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"auctionhouse-backend/internal/domains/auction/model"
)

// AuctionRepository is the data access contract for auction items and the
// append-only bid ledger. Bid rows are never updated or deleted.
type AuctionRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CommitTx(ctx context.Context, tx pgx.Tx) error
	RollbackTx(ctx context.Context, tx pgx.Tx) error

	CreateItem(ctx context.Context, item *model.AuctionItem) error
	GetItemByID(ctx context.Context, id uuid.UUID) (*model.AuctionItem, error)

	// GetItemForUpdateTx reads the item under a row lock. It is the single
	// point of mutual exclusion for bid acceptance: the lock serializes
	// concurrent bids per item while leaving other items untouched.
	GetItemForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.AuctionItem, error)

	// InsertBidTx appends a ledger row inside the bid transaction.
	InsertBidTx(ctx context.Context, tx pgx.Tx, bid *model.Bid) error

	// ApplyBidTx moves the item projection to the accepted bid and bumps
	// the fan-out version. Must run in the same transaction as InsertBidTx.
	ApplyBidTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, amount decimal.Decimal, bidderID uuid.UUID) (*model.AuctionItem, error)

	// ActivateItem performs the draft -> active transition, only for the
	// item's seller and only while the item is still a draft.
	ActivateItem(ctx context.Context, itemID, sellerID uuid.UUID) (*model.AuctionItem, error)

	ListBidsByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]model.Bid, error)

	// GetWinningBid returns the highest bid for the item, ties broken by
	// earliest created_at. Returns nil, nil when the ledger is empty.
	GetWinningBid(ctx context.Context, itemID uuid.UUID) (*model.Bid, error)

	// ListExpiredActive selects resolution candidates: active items whose
	// end_date has passed.
	ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]model.AuctionItem, error)

	// MarkEnded claims the active -> ended transition with a conditional
	// update. The claim succeeds only while the item is still at
	// expectedVersion, so an outcome computed against a version that a
	// late bid has since advanced cannot be applied. Returns false when
	// the claim is lost either way; the caller must then skip emitting
	// resolution events and leave the item for the next sweep.
	MarkEnded(ctx context.Context, itemID uuid.UUID, expectedVersion int64, winnerID *uuid.UUID, finalPrice *decimal.Decimal, reserveMet *bool) (bool, error)

	// ListEndingSoon selects active items with at least one bid whose
	// end_date falls inside (now, until].
	ListEndingSoon(ctx context.Context, now, until time.Time) ([]model.AuctionItem, error)

	// ListItemBidderIDs returns the distinct bidders on an item.
	ListItemBidderIDs(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error)
}
