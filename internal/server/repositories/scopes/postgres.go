package scopes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CentraForUser(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT centra_id
		FROM centra_assignments
		WHERE user_id = $1 AND active
		ORDER BY assigned_at DESC
		LIMIT 1
	`
	return r.lookup(ctx, query, userID)
}

func (r *PostgresRepository) WarehouseForUser(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT warehouse_id
		FROM warehouse_assignments
		WHERE user_id = $1 AND active
		ORDER BY assigned_at DESC
		LIMIT 1
	`
	return r.lookup(ctx, query, userID)
}

func (r *PostgresRepository) AssignCentra(ctx context.Context, userID, centraID int64) error {
	query := `
		INSERT INTO centra_assignments (user_id, centra_id)
		VALUES ($1, $2)
	`
	return r.assign(ctx, query, userID, centraID)
}

func (r *PostgresRepository) AssignWarehouse(ctx context.Context, userID, warehouseID int64) error {
	query := `
		INSERT INTO warehouse_assignments (user_id, warehouse_id)
		VALUES ($1, $2)
	`
	return r.assign(ctx, query, userID, warehouseID)
}

func (r *PostgresRepository) assign(ctx context.Context, query string, userID, targetID int64) error {
	if _, err := r.db.ExecContext(ctx, query, userID, targetID); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) lookup(ctx context.Context, query string, userID int64) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}
