package machines

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

const selectMachine = `
		SELECT id, kind, centra_id, capacity, status, updated_at
		FROM machines
		WHERE kind = $1 AND id = $2`

func (r *PostgresRepository) Create(ctx context.Context, m *models.Machine) (*models.Machine, error) {
	query := `
		INSERT INTO machines (id, kind, centra_id, capacity, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, m.ID, string(m.Kind), m.CentraID, m.Capacity, string(m.Status)).
		Scan(&m.UpdatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrorAlreadyExists
		case dbx.IsForeignKeyViolation(err):
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Get(ctx context.Context, kind models.MachineKind, id string) (*models.Machine, error) {
	return r.scanOne(ctx, selectMachine, kind, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, kind models.MachineKind, id string) (*models.Machine, error) {
	return r.scanOne(ctx, selectMachine+`
		FOR UPDATE`, kind, id)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, kind models.MachineKind, id string, status models.MachineStatus) error {
	query := `
		UPDATE machines
		SET status = $1, updated_at = now()
		WHERE kind = $2 AND id = $3
	`
	res, err := r.db.ExecContext(ctx, query, string(status), string(kind), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, kind models.MachineKind, id string) (*models.Machine, error) {
	var (
		m              models.Machine
		kindS, statusS string
	)
	err := r.db.QueryRowContext(ctx, query, string(kind), id).
		Scan(&m.ID, &kindS, &m.CentraID, &m.Capacity, &statusS, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	m.Kind = models.MachineKind(kindS)
	m.Status = models.MachineStatus(statusS)
	return &m, nil
}
