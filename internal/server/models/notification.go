package models

import "time"

// Notification is a system-generated message for one centra. Rows are
// append-only apart from IsRead.
type Notification struct {
	ID        int64
	CentraID  int64
	Message   string
	CreatedAt time.Time
	IsRead    bool
}
