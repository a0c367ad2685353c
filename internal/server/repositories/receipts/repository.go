// Package receipts stores package receipts accepted at a harbour together
// with the object key of their scanned document.
package receipts

import (
	"context"

	"github.com/mori-tea/mori/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, r *models.PackageReceipt) (*models.PackageReceipt, error)
	Get(ctx context.Context, id int64) (*models.PackageReceipt, error)
	SetDocumentKey(ctx context.Context, id int64, key string) error
}
