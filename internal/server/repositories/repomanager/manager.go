package repomanager

import (
	"context"
	"database/sql"

	"github.com/ivanpetrenko/authgate/internal/dbx"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/accounts"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/tokens"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/users"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/verifications"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same constructors inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Verifications(db dbx.DBTX) verifications.Repository
}
