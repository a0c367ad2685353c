package expeditions

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

const selectExpedition = `
		SELECT id, centra_id, destination, total_packages, service_details, estimated_arrival, status, created_at, updated_at
		FROM expeditions
		WHERE id = $1`

func (r *PostgresRepository) Create(ctx context.Context, e *models.Expedition) (*models.Expedition, error) {
	query := `
		INSERT INTO expeditions (centra_id, destination, total_packages, service_details, estimated_arrival, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	var eta sql.NullTime
	if e.EstimatedArrival != nil {
		eta = sql.NullTime{Time: *e.EstimatedArrival, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		e.CentraID, e.Destination, e.TotalPackages, e.ServiceDetails, eta, string(e.Status)).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Expedition, error) {
	return r.scanOne(ctx, selectExpedition, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id int64) (*models.Expedition, error) {
	return r.scanOne(ctx, selectExpedition+`
		FOR UPDATE`, id)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status models.ExpeditionStatus) error {
	query := `
		UPDATE expeditions
		SET status = $1, updated_at = now()
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, id int64) (*models.Expedition, error) {
	var (
		e      models.Expedition
		eta    sql.NullTime
		status string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.CentraID, &e.Destination, &e.TotalPackages, &e.ServiceDetails,
		&eta, &status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if eta.Valid {
		e.EstimatedArrival = &eta.Time
	}
	e.Status = models.ExpeditionStatus(status)
	return &e, nil
}
