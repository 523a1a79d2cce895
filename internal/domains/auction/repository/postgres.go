package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"auctionhouse-backend/internal/domains/auction/model"
)

// ================================================
// AUCTION REPOSITORY IMPLEMENTATION
// ================================================

const auctionItemColumns = `
	id, seller_id, title, description,
	starting_bid, bid_increment, reserve_price,
	current_bid, highest_bidder_id, bid_count,
	status, end_date,
	winner_id, final_selling_price, reserve_met,
	version, created_at, updated_at
`

type auctionRepository struct {
	db *pgxpool.Pool
}

func NewAuctionRepository(db *pgxpool.Pool) AuctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		// Failing to obtain a connection is the store being unreachable,
		// not a validation problem; callers surface it as retriable.
		return nil, fmt.Errorf("begin tx: %w", errors.Join(model.ErrUnavailable, err))
	}
	return tx, nil
}

func (r *auctionRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

func (r *auctionRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// CreateItem inserts a new auction item (draft or active).
func (r *auctionRepository) CreateItem(ctx context.Context, item *model.AuctionItem) error {
	query := `
		INSERT INTO auction_items (
			id, seller_id, title, description,
			starting_bid, bid_increment, reserve_price,
			bid_count, status, end_date, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, 0, $8, $9, 0
		)
		RETURNING created_at, updated_at
	`

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		item.ID, item.SellerID, item.Title, item.Description,
		item.StartingBid, item.BidIncrement, item.ReservePrice,
		item.Status, item.EndDate,
	).Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create auction item: %w", err)
	}

	return nil
}

func (r *auctionRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*model.AuctionItem, error) {
	query := `SELECT ` + auctionItemColumns + ` FROM auction_items WHERE id = $1`

	item, err := scanAuctionItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("get auction item by id: %w", err)
	}

	return item, nil
}

// GetItemForUpdateTx locks the item row for the remainder of the transaction.
// Concurrent placeBid calls on the same item queue up here; across items
// there is no shared lock.
func (r *auctionRepository) GetItemForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.AuctionItem, error) {
	query := `SELECT ` + auctionItemColumns + ` FROM auction_items WHERE id = $1 FOR UPDATE`

	item, err := scanAuctionItem(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("get auction item for update: %w", err)
	}

	return item, nil
}

func (r *auctionRepository) InsertBidTx(ctx context.Context, tx pgx.Tx, bid *model.Bid) error {
	query := `
		INSERT INTO bids (id, auction_item_id, bidder_id, bid_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}

	err := tx.QueryRow(ctx, query,
		bid.ID, bid.AuctionItemID, bid.BidderID, bid.BidAmount,
	).Scan(&bid.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}

	return nil
}

func (r *auctionRepository) ApplyBidTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, amount decimal.Decimal, bidderID uuid.UUID) (*model.AuctionItem, error) {
	query := `
		UPDATE auction_items
		SET current_bid = $2,
		    highest_bidder_id = $3,
		    bid_count = bid_count + 1,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + auctionItemColumns

	item, err := scanAuctionItem(tx.QueryRow(ctx, query, itemID, amount, bidderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("apply bid to auction item: %w", err)
	}

	return item, nil
}

func (r *auctionRepository) ActivateItem(ctx context.Context, itemID, sellerID uuid.UUID) (*model.AuctionItem, error) {
	query := `
		UPDATE auction_items
		SET status = $3,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND seller_id = $2 AND status = $4
		RETURNING ` + auctionItemColumns

	item, err := scanAuctionItem(r.db.QueryRow(ctx, query, itemID, sellerID, model.StatusActive, model.StatusDraft))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrInvalidStatus
		}
		return nil, fmt.Errorf("activate auction item: %w", err)
	}

	return item, nil
}

func (r *auctionRepository) ListBidsByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]model.Bid, error) {
	query := `
		SELECT id, auction_item_id, bidder_id, bid_amount, created_at
		FROM bids
		WHERE auction_item_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bids by item: %w", err)
	}
	defer rows.Close()

	return scanBids(rows)
}

func (r *auctionRepository) GetWinningBid(ctx context.Context, itemID uuid.UUID) (*model.Bid, error) {
	query := `
		SELECT id, auction_item_id, bidder_id, bid_amount, created_at
		FROM bids
		WHERE auction_item_id = $1
		ORDER BY bid_amount DESC, created_at ASC
		LIMIT 1
	`

	var b model.Bid
	err := r.db.QueryRow(ctx, query, itemID).Scan(
		&b.ID, &b.AuctionItemID, &b.BidderID, &b.BidAmount, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get winning bid: %w", err)
	}

	return &b, nil
}

func (r *auctionRepository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]model.AuctionItem, error) {
	query := `
		SELECT ` + auctionItemColumns + `
		FROM auction_items
		WHERE status = $1 AND end_date <= $2
		ORDER BY end_date ASC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, model.StatusActive, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired active items: %w", err)
	}
	defer rows.Close()

	return scanAuctionItems(rows)
}

// MarkEnded is the per-item mutual exclusion gate for resolution: the status
// predicate makes the conditional update succeed for exactly one invocation,
// and the version predicate rejects an outcome computed before a late bid
// advanced the item.
func (r *auctionRepository) MarkEnded(ctx context.Context, itemID uuid.UUID, expectedVersion int64, winnerID *uuid.UUID, finalPrice *decimal.Decimal, reserveMet *bool) (bool, error) {
	query := `
		UPDATE auction_items
		SET status = $2,
		    winner_id = $3,
		    final_selling_price = $4,
		    reserve_met = $5,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND status = $6 AND version = $7
	`

	result, err := r.db.Exec(ctx, query,
		itemID, model.StatusEnded, winnerID, finalPrice, reserveMet, model.StatusActive, expectedVersion,
	)
	if err != nil {
		return false, fmt.Errorf("mark auction ended: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *auctionRepository) ListEndingSoon(ctx context.Context, now, until time.Time) ([]model.AuctionItem, error) {
	query := `
		SELECT ` + auctionItemColumns + `
		FROM auction_items
		WHERE status = $1 AND bid_count > 0 AND end_date > $2 AND end_date <= $3
		ORDER BY end_date ASC
	`

	rows, err := r.db.Query(ctx, query, model.StatusActive, now, until)
	if err != nil {
		return nil, fmt.Errorf("list ending soon: %w", err)
	}
	defer rows.Close()

	return scanAuctionItems(rows)
}

func (r *auctionRepository) ListItemBidderIDs(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT bidder_id FROM bids WHERE auction_item_id = $1`

	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list item bidder ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan bidder id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return ids, nil
}

// ================================================
// SCAN HELPERS
// ================================================

func scanAuctionItem(row pgx.Row) (*model.AuctionItem, error) {
	var item model.AuctionItem
	err := row.Scan(
		&item.ID, &item.SellerID, &item.Title, &item.Description,
		&item.StartingBid, &item.BidIncrement, &item.ReservePrice,
		&item.CurrentBid, &item.HighestBidderID, &item.BidCount,
		&item.Status, &item.EndDate,
		&item.WinnerID, &item.FinalSellingPrice, &item.ReserveMet,
		&item.Version, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanAuctionItems(rows pgx.Rows) ([]model.AuctionItem, error) {
	var items []model.AuctionItem
	for rows.Next() {
		item, err := scanAuctionItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

func scanBids(rows pgx.Rows) ([]model.Bid, error) {
	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		err := rows.Scan(&b.ID, &b.AuctionItemID, &b.BidderID, &b.BidAmount, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return bids, nil
}
