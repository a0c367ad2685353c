// Package expeditions stores outbound shipments from a centra to a harbour.
package expeditions

import (
	"context"

	"github.com/mori-tea/mori/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.Expedition) (*models.Expedition, error)
	Get(ctx context.Context, id int64) (*models.Expedition, error)
	// GetForUpdate reads the expedition and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Expedition, error)
	UpdateStatus(ctx context.Context, id int64, status models.ExpeditionStatus) error
}
