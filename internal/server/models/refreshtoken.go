package models

import "time"

// RefreshToken records an issued refresh JWT by its jti so it can be
// revoked on logout.
type RefreshToken struct {
	ID        string
	UserID    int64
	Expires   time.Time
	CreatedAt time.Time
}
