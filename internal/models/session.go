package models

import (
	"time"
)

// Session is the server-side record of an issued access token.
// The token string is the lookup key.
type Session struct {
	ID        string
	UserID    string
	Token     string
	Revoked   bool
	RevokedAt *time.Time // nil while the session is active
	CreatedAt time.Time
	ExpiresAt time.Time
}
