package verifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/dbx"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/ivanpetrenko/authgate/internal/server/schema"
)

// PostgresRepository implements Repository over dbx.DBTX. All identifiers
// come from the schema map passed at construction.
type PostgresRepository struct {
	db dbx.DBTX

	qUpsert string
	qFind   string
}

// NewPostgresRepository constructs a repository bound to the given DBTX,
// pre-rendering its queries from the schema map.
func NewPostgresRepository(db dbx.DBTX, sm schema.Map) *PostgresRepository {
	t := sm.Verify
	return &PostgresRepository{
		db: db,
		qUpsert: fmt.Sprintf(
			`INSERT INTO %q (%q, %q, %q, %q) VALUES ($1, $2, $3, $4) ON CONFLICT (%q) DO UPDATE SET %q = EXCLUDED.%q, %q = EXCLUDED.%q`,
			t.Name, t.ID, t.Contact, t.Code, t.ExpiresAt,
			t.Contact, t.Code, t.Code, t.ExpiresAt, t.ExpiresAt),
		qFind: fmt.Sprintf(
			`SELECT %q, %q, %q, %q FROM %q WHERE %q = $1`,
			t.ID, t.Contact, t.Code, t.ExpiresAt, t.Name, t.Contact),
	}
}

// Upsert writes the verification request, overwriting the outstanding code
// for the same contact if one exists.
func (r *PostgresRepository) Upsert(ctx context.Context, request *models.VerificationRequest) error {
	if _, err := r.db.ExecContext(ctx, r.qUpsert,
		request.ID, request.Contact, request.Code, request.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the outstanding request for the contact, or
// common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, contact string) (*models.VerificationRequest, error) {
	request := &models.VerificationRequest{}
	err := r.db.QueryRowContext(ctx, r.qFind, contact).
		Scan(&request.ID, &request.Contact, &request.Code, &request.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return request, nil
}
