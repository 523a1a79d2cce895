package model

import "errors"

// ================================================
// CUSTOM ERROR CODES
// ================================================
const (
	ErrCodeNotFound     = "NTF001"
	ErrCodeUnauthorized = "NTF002"
)

// ================================================
// ERROR DEFINITIONS
// ================================================
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUnauthorized         = errors.New("notification belongs to another user")
)
