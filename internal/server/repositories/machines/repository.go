// Package machines stores drying and flouring machines. A machine is keyed
// by its kind and its centra-facing id.
package machines

import (
	"context"

	"github.com/mori-tea/mori/internal/server/models"
)

type Repository interface {
	// Create inserts m. An existing (kind, id) yields common.ErrorAlreadyExists,
	// an unknown centra common.ErrorNotFound.
	Create(ctx context.Context, m *models.Machine) (*models.Machine, error)
	Get(ctx context.Context, kind models.MachineKind, id string) (*models.Machine, error)
	// GetForUpdate reads the machine and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, kind models.MachineKind, id string) (*models.Machine, error)
	UpdateStatus(ctx context.Context, kind models.MachineKind, id string, status models.MachineStatus) error
}
