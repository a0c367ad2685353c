package models

import "time"

// URLToken backs a one-time set-password link. The link carries the value
// encrypted; the row stores it in the clear and is deleted on use.
type URLToken struct {
	Value     string
	UserID    int64
	ExpiresAt time.Time
}

func (t *URLToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
