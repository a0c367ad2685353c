package repomanager

import (
	"context"
	"database/sql"

	"github.com/mori-tea/mori/internal/dbx"
	"github.com/mori-tea/mori/internal/server/repositories/expeditions"
	"github.com/mori-tea/mori/internal/server/repositories/machines"
	"github.com/mori-tea/mori/internal/server/repositories/notifications"
	"github.com/mori-tea/mori/internal/server/repositories/receipts"
	"github.com/mori-tea/mori/internal/server/repositories/refreshtokens"
	"github.com/mori-tea/mori/internal/server/repositories/scopes"
	"github.com/mori-tea/mori/internal/server/repositories/urltokens"
	"github.com/mori-tea/mori/internal/server/repositories/users"
)

// RepositoryManager binds repositories to a DBTX, so the same service code
// runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	URLTokens(db dbx.DBTX) urltokens.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Scopes(db dbx.DBTX) scopes.Repository
	Machines(db dbx.DBTX) machines.Repository
	Expeditions(db dbx.DBTX) expeditions.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	Receipts(db dbx.DBTX) receipts.Repository
}
