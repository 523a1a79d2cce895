package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auctionhouse-backend/internal/domains/identity/model"
)

type userProfileRepository struct {
	db *pgxpool.Pool
}

func NewUserProfileRepository(db *pgxpool.Pool) UserProfileRepository {
	return &userProfileRepository{db: db}
}

func (r *userProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	query := `
		SELECT id, email, display_name, created_at, updated_at
		FROM user_profiles
		WHERE id = $1
	`

	var p model.UserProfile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	return &p, nil
}

func (r *userProfileRepository) Upsert(ctx context.Context, profile *model.UserProfile) error {
	query := `
		INSERT INTO user_profiles (id, email, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    display_name = EXCLUDED.display_name,
		    updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, profile.ID, profile.Email, profile.DisplayName); err != nil {
		return fmt.Errorf("upsert user profile: %w", err)
	}

	return nil
}
