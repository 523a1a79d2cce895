package repository

import (
	"context"

	"github.com/google/uuid"

	"auctionhouse-backend/internal/domains/identity/model"
)

// UserProfileRepository reads and syncs the local mirror of auth provider
// accounts.
type UserProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)

	// Upsert keeps the mirror current on login callbacks from the auth
	// provider.
	Upsert(ctx context.Context, profile *model.UserProfile) error
}
