// Package notifications persists the per-centra notification log. Rows are
// only ever inserted by status changes; the read flag is the single mutable
// column.
package notifications

import (
	"context"

	"github.com/mori-tea/mori/internal/server/models"
)

type Repository interface {
	// Create inserts n and fills in ID and CreatedAt.
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	Get(ctx context.Context, id int64) (*models.Notification, error)
	// List returns the newest notifications of a centra first.
	List(ctx context.Context, centraID int64, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}
