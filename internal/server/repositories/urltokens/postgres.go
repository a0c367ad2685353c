package urltokens

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.URLToken) error {
	query := `
		INSERT INTO url_tokens (value, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, token.Value, token.UserID, token.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, value string) (*models.URLToken, error) {
	query := `
		SELECT value, user_id, expires_at
		FROM url_tokens
		WHERE value = $1
	`
	t := &models.URLToken{}
	if err := r.db.QueryRowContext(ctx, query, value).Scan(&t.Value, &t.UserID, &t.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Delete consumes a token. A token that is already gone, for example taken
// by a concurrent request, yields common.ErrInvalidToken.
func (r *PostgresRepository) Delete(ctx context.Context, value string) error {
	query := `
		DELETE FROM url_tokens
		WHERE value = $1
	`
	res, err := r.db.ExecContext(ctx, query, value)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrInvalidToken
	}
	return nil
}
