package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/models"
)

// CreateMachine registers a machine in the idle state.
func (s *StatusService) CreateMachine(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string, centraID int64, capacity int) (*models.Machine, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown machine kind %q", common.ErrorValidation, kind)
	}
	id = strings.TrimSpace(id)
	if id == "" || capacity < 0 {
		return nil, fmt.Errorf("%w: machine id and a non-negative capacity are required", common.ErrorValidation)
	}
	if err := requireCentra(actor, centraID); err != nil {
		return nil, err
	}

	return s.repomanager.Machines(s.db).Create(ctx, &models.Machine{
		ID:       id,
		Kind:     kind,
		CentraID: centraID,
		Capacity: capacity,
		Status:   models.MachineIdle,
	})
}

// CreateExpedition opens an expedition in the PKG_Delivering state.
func (s *StatusService) CreateExpedition(ctx context.Context, actor auth.Identity, centraID int64, destination string, totalPackages int, details string, eta *time.Time) (*models.Expedition, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" || totalPackages <= 0 {
		return nil, fmt.Errorf("%w: destination and a positive package count are required", common.ErrorValidation)
	}
	if err := requireCentra(actor, centraID); err != nil {
		return nil, err
	}

	return s.repomanager.Expeditions(s.db).Create(ctx, &models.Expedition{
		CentraID:         centraID,
		Destination:      destination,
		TotalPackages:    totalPackages,
		ServiceDetails:   details,
		EstimatedArrival: eta,
		Status:           models.ExpeditionPkgDelivering,
	})
}
