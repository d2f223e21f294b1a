// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors, the schema name mapping, and
// database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/ivanpetrenko/authgate/internal/dbx"
	"github.com/ivanpetrenko/authgate/internal/server/migrations"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/accounts"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/tokens"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/users"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/verifications"
	"github.com/ivanpetrenko/authgate/internal/server/schema"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations sharing one schema name mapping, and exposes a schema
// migration hook.
type PostgresRepositoryManager struct {
	schema schema.Map
}

// NewPostgresRepositoryManager constructs a manager using the given schema
// mapping (empty names fall back to the defaults).
func NewPostgresRepositoryManager(sm schema.Map) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{schema: sm.WithDefaults()}
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db, m.schema)
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db, m.schema)
}

// Tokens returns a tokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Tokens(db dbx.DBTX) tokens.Repository {
	return tokens.NewPostgresRepository(db, m.schema)
}

// Verifications returns a verifications.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Verifications(db dbx.DBTX) verifications.Repository {
	return verifications.NewPostgresRepository(db, m.schema)
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
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
