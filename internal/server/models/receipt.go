package models

import "time"

type PackageReceipt struct {
	ID          int64
	UserID      int64
	PackageID   string
	TotalWeight float64
	Note        string
	// DocumentKey is the object-storage key of the scanned receipt, empty
	// until an upload has been requested.
	DocumentKey string
	AcceptedAt  time.Time
}
