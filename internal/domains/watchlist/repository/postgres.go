package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type watchlistRepository struct {
	db *pgxpool.Pool
}

func NewWatchlistRepository(db *pgxpool.Pool) WatchlistRepository {
	return &watchlistRepository{db: db}
}

func (r *watchlistRepository) Add(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO watchlist_entries (user_id, auction_item_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, auction_item_id) DO NOTHING
		RETURNING created_at
	`

	var created interface{}
	err := r.db.QueryRow(ctx, query, userID, itemID).Scan(&created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("add watchlist entry: %w", err)
	}

	return true, nil
}

func (r *watchlistRepository) Remove(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	query := `DELETE FROM watchlist_entries WHERE user_id = $1 AND auction_item_id = $2`

	result, err := r.db.Exec(ctx, query, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("remove watchlist entry: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *watchlistRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]WatchedItem, int64, error) {
	countQuery := `SELECT COUNT(*) FROM watchlist_entries WHERE user_id = $1`

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count watchlist entries: %w", err)
	}

	query := `
		SELECT
			w.created_at,
			a.id, a.seller_id, a.title, a.description,
			a.starting_bid, a.bid_increment, a.reserve_price,
			a.current_bid, a.highest_bidder_id, a.bid_count,
			a.status, a.end_date,
			a.winner_id, a.final_selling_price, a.reserve_met,
			a.version, a.created_at, a.updated_at
		FROM watchlist_entries w
		JOIN auction_items a ON a.id = w.auction_item_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var out []WatchedItem
	for rows.Next() {
		var w WatchedItem
		item := &w.Item
		err := rows.Scan(
			&w.WatchedAt,
			&item.ID, &item.SellerID, &item.Title, &item.Description,
			&item.StartingBid, &item.BidIncrement, &item.ReservePrice,
			&item.CurrentBid, &item.HighestBidderID, &item.BidCount,
			&item.Status, &item.EndDate,
			&item.WinnerID, &item.FinalSellingPrice, &item.ReserveMet,
			&item.Version, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan watchlist row: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return out, total, nil
}

func (r *watchlistRepository) ListWatcherIDs(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM watchlist_entries WHERE auction_item_id = $1`

	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list watchers: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan watcher id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return ids, nil
}
