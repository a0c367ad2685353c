// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mori-tea/mori/internal/dbx"
	"github.com/mori-tea/mori/internal/server/migrations"
	"github.com/mori-tea/mori/internal/server/repositories/expeditions"
	"github.com/mori-tea/mori/internal/server/repositories/machines"
	"github.com/mori-tea/mori/internal/server/repositories/notifications"
	"github.com/mori-tea/mori/internal/server/repositories/receipts"
	"github.com/mori-tea/mori/internal/server/repositories/refreshtokens"
	"github.com/mori-tea/mori/internal/server/repositories/scopes"
	"github.com/mori-tea/mori/internal/server/repositories/urltokens"
	"github.com/mori-tea/mori/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) URLTokens(db dbx.DBTX) urltokens.Repository {
	return urltokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Scopes(db dbx.DBTX) scopes.Repository {
	return scopes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Machines(db dbx.DBTX) machines.Repository {
	return machines.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Expeditions(db dbx.DBTX) expeditions.Repository {
	return expeditions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Notifications(db dbx.DBTX) notifications.Repository {
	return notifications.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Receipts(db dbx.DBTX) receipts.Repository {
	return receipts.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
