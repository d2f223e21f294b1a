// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// and a helper to run functions inside a transaction with optional
// post-commit hooks.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx wraps a transactional handle and collects deferred side effects that
// must run only after a successful commit. Storage failures therefore never
// leak half-delivered notifications, and hook failures never roll back the
// transaction: a hook is a plain closure responsible for its own error
// handling (typically log-and-swallow).
type Tx struct {
	DBTX
	hooks []func(ctx context.Context)
}

// AfterCommit registers fn to run after the transaction commits. Hooks run
// in registration order. If the transaction rolls back, no hook runs.
func (t *Tx) AfterCommit(fn func(ctx context.Context)) {
	t.hooks = append(t.hooks, fn)
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
// Hooks registered on the handle via AfterCommit run once the commit has
// succeeded.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx *dbx.Tx) error {
//	    // use tx instead of db
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx *Tx) error) (err error) {
	sqlTx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	t := &Tx{DBTX: sqlTx}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
			return
		}
		if err = sqlTx.Commit(); err != nil {
			return
		}
		for _, h := range t.hooks {
			h(ctx)
		}
	}()

	err = fn(ctx, t)
	return err
}
