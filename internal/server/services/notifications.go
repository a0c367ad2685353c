package services

import (
	"context"
	"database/sql"

	"github.com/mori-tea/mori/internal/server/auth"
	"github.com/mori-tea/mori/internal/server/models"
	"github.com/mori-tea/mori/internal/server/repositories/repomanager"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

// NotificationService reads the notification log. Notifications are only
// created by StatusService.
type NotificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNotificationService(db *sql.DB, m repomanager.RepositoryManager) *NotificationService {
	return &NotificationService{db: db, repomanager: m}
}

func (s *NotificationService) ListNotifications(ctx context.Context, actor auth.Identity, centraID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	centraID, err := actor.ResolveCentra(centraID)
	if err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultNotificationLimit
	case limit > MaxNotificationLimit:
		limit = MaxNotificationLimit
	}
	return s.repomanager.Notifications(s.db).List(ctx, centraID, unreadOnly, limit)
}

func (s *NotificationService) MarkNotificationRead(ctx context.Context, actor auth.Identity, id int64) error {
	repo := s.repomanager.Notifications(s.db)

	n, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireCentra(actor, n.CentraID); err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return repo.MarkRead(ctx, id)
}
