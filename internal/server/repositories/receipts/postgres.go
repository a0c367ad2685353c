package receipts

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

func (r *PostgresRepository) Create(ctx context.Context, rc *models.PackageReceipt) (*models.PackageReceipt, error) {
	query := `
		INSERT INTO package_receipts (user_id, package_id, total_weight, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, accepted_at
	`
	err := r.db.QueryRowContext(ctx, query, rc.UserID, rc.PackageID, rc.TotalWeight, rc.Note).
		Scan(&rc.ID, &rc.AcceptedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rc, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.PackageReceipt, error) {
	query := `
		SELECT id, user_id, package_id, total_weight, note, document_key, accepted_at
		FROM package_receipts
		WHERE id = $1
	`
	var (
		rc  models.PackageReceipt
		key sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&rc.ID, &rc.UserID, &rc.PackageID, &rc.TotalWeight, &rc.Note, &key, &rc.AcceptedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rc.DocumentKey = key.String
	return &rc, nil
}

func (r *PostgresRepository) SetDocumentKey(ctx context.Context, id int64, key string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE package_receipts SET document_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
