package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/dbx"
	"github.com/mori-tea/mori/internal/logging"
	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/mori-tea/mori/internal/server/repositories/repomanager"
)

// Publisher fans committed notifications out to live subscribers.
type Publisher interface {
	Publish(n *models.Notification)
}

// StatusService changes machine and expedition statuses. Every accepted
// change writes exactly one notification for the owning centra in the same
// transaction as the status update.
type StatusService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   Publisher
	log         logging.Logger
}

func NewStatusService(db *sql.DB, m repomanager.RepositoryManager, p Publisher, l logging.Logger) *StatusService {
	return &StatusService{
		db:          db,
		repomanager: m,
		publisher:   p,
		log:         l.With("module", "status"),
	}
}

func MachineMessage(kind models.MachineKind, id string, status models.MachineStatus) string {
	return fmt.Sprintf("%s %s is now %s", kind.Label(), id, status)
}

func ExpeditionMessage(id int64, status models.ExpeditionStatus) string {
	return fmt.Sprintf("Expedition %d status changed to %s", id, status)
}

func (s *StatusService) StartMachine(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error) {
	return s.SetMachineStatus(ctx, actor, kind, id, models.MachineRunning)
}

func (s *StatusService) StopMachine(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error) {
	return s.SetMachineStatus(ctx, actor, kind, id, models.MachineIdle)
}

func (s *StatusService) FinishMachine(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error) {
	return s.SetMachineStatus(ctx, actor, kind, id, models.MachineFinished)
}

// SetMachineStatus validates status before touching the database, then
// locks the machine row, updates it and records the notification.
func (s *StatusService) SetMachineStatus(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string, status models.MachineStatus) (*models.Machine, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown machine kind %q", common.ErrorValidation, kind)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q is not a machine status", common.ErrInvalidStatus, status)
	}
	if err := requireRole(actor, models.RoleCentra); err != nil {
		return nil, err
	}

	var (
		machine *models.Machine
		notif   *models.Notification
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		m, err := s.repomanager.Machines(tx).GetForUpdate(ctx, kind, id)
		if err != nil {
			return err
		}
		if err := requireCentra(actor, m.CentraID); err != nil {
			return err
		}
		if m.Status == status {
			return common.ErrStatusUnchanged
		}
		if err := s.repomanager.Machines(tx).UpdateStatus(ctx, kind, id, status); err != nil {
			return err
		}
		m.Status = status

		notif, err = s.repomanager.Notifications(tx).Create(ctx, &models.Notification{
			CentraID: m.CentraID,
			Message:  MachineMessage(kind, id, status),
		})
		if err != nil {
			return fmt.Errorf("record notification: %w", err)
		}
		machine = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "machine status changed",
		"kind", kind, "machine_id", id, "status", status, "centra_id", machine.CentraID, "user_id", actor.UserID)
	s.publish(notif)
	return machine, nil
}

func (s *StatusService) GetMachine(ctx context.Context, actor auth.Identity, kind models.MachineKind, id string) (*models.Machine, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown machine kind %q", common.ErrorValidation, kind)
	}
	if err := requireRole(actor, models.RoleCentra); err != nil {
		return nil, err
	}
	m, err := s.repomanager.Machines(s.db).Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := requireCentra(actor, m.CentraID); err != nil {
		return nil, err
	}
	return m, nil
}

// SetExpeditionStatus follows the same sequence as SetMachineStatus. XYZ
// users may move any expedition, Centra users only their own.
func (s *StatusService) SetExpeditionStatus(ctx context.Context, actor auth.Identity, id int64, status models.ExpeditionStatus) (*models.Expedition, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q is not an expedition status", common.ErrInvalidStatus, status)
	}
	if err := requireRole(actor, models.RoleCentra, models.RoleXYZ); err != nil {
		return nil, err
	}

	var (
		exp   *models.Expedition
		notif *models.Notification
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		e, err := s.repomanager.Expeditions(tx).GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if actor.Role != models.RoleXYZ {
			if err := requireCentra(actor, e.CentraID); err != nil {
				return err
			}
		}
		if e.Status == status {
			return common.ErrStatusUnchanged
		}
		if err := s.repomanager.Expeditions(tx).UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		e.Status = status

		notif, err = s.repomanager.Notifications(tx).Create(ctx, &models.Notification{
			CentraID: e.CentraID,
			Message:  ExpeditionMessage(id, status),
		})
		if err != nil {
			return fmt.Errorf("record notification: %w", err)
		}
		exp = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "expedition status changed",
		"expedition_id", id, "status", status, "centra_id", exp.CentraID, "user_id", actor.UserID)
	s.publish(notif)
	return exp, nil
}

func (s *StatusService) GetExpedition(ctx context.Context, actor auth.Identity, id int64) (*models.Expedition, error) {
	if err := requireRole(actor, models.RoleCentra, models.RoleXYZ); err != nil {
		return nil, err
	}
	e, err := s.repomanager.Expeditions(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleXYZ {
		if err := requireCentra(actor, e.CentraID); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (s *StatusService) publish(n *models.Notification) {
	if s.publisher != nil && n != nil {
		s.publisher.Publish(n)
	}
}
