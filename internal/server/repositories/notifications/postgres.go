package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/dbx"
	"github.com/mori-tea/mori/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (centra_id, message)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, n.CentraID, n.Message).Scan(&n.ID, &n.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n.IsRead = false
	return n, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Notification, error) {
	query := `
		SELECT id, centra_id, message, created_at, is_read
		FROM notifications
		WHERE id = $1
	`
	n := &models.Notification{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&n.ID, &n.CentraID, &n.Message, &n.CreatedAt, &n.IsRead)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) List(ctx context.Context, centraID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, centra_id, message, created_at, is_read
		FROM notifications
		WHERE centra_id = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, centraID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Notification, 0)
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.CentraID, &n.Message, &n.CreatedAt, &n.IsRead); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
