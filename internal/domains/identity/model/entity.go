package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("user profile not found")

// UserProfile mirrors the auth provider's user record. The auth provider
// owns accounts; this table only carries what notifications and display
// need locally.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
