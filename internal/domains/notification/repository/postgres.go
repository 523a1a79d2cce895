package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auctionhouse-backend/internal/domains/notification/model"
	"auctionhouse-backend/pkg/database"
)

// ================================================
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ================================================

const notificationColumns = `
	id, user_id, type, title, message, auction_item_id,
	idempotency_key, is_read, read_at, email_status, created_at
`

type notificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create relies on the unique index on idempotency_key: duplicate dispatches
// hit ON CONFLICT DO NOTHING and report created=false.
func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (
			id, user_id, type, title, message, auction_item_id,
			idempotency_key, email_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING created_at
	`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.EmailStatus == "" {
		n.EmailStatus = model.EmailStatusPending
	}

	err := r.db.QueryRow(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.AuctionItemID,
		n.IdempotencyKey, n.EmailStatus,
	).Scan(&n.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("create notification: %w", err)
	}

	return true, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get notification by id: %w", err)
	}

	return n, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, q *model.ListNotificationsQuery) ([]model.Notification, int64, error) {
	countQuery := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND ($2 = false OR is_read = false)`

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, userID, q.UnreadOnly).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND ($2 = false OR is_read = false)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, userID, q.UnreadOnly, q.Limit, q.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var items []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return items, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_read = false
	`

	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, id, userID)
		if err != nil {
			return fmt.Errorf("mark notification as read: %w", err)
		}
		if result.RowsAffected() == 1 {
			return nil
		}

		// Distinguish missing/foreign from already-read.
		var ownerID uuid.UUID
		err = tx.QueryRow(ctx, `SELECT user_id FROM notifications WHERE id = $1`, id).Scan(&ownerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrNotificationNotFound
			}
			return fmt.Errorf("check notification owner: %w", err)
		}
		if ownerID != userID {
			return model.ErrUnauthorized
		}
		return nil
	})
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = NOW()
		WHERE user_id = $1 AND is_read = false
	`

	result, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications as read: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *notificationRepository) UpdateEmailStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE notifications SET email_status = $2 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update notification email status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrNotificationNotFound
	}

	return nil
}

func (r *notificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE is_read = true AND created_at < $1`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old notifications: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (*model.Notification, error) {
	var n model.Notification
	err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.AuctionItemID,
		&n.IdempotencyKey, &n.IsRead, &n.ReadAt, &n.EmailStatus, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
