package tokens

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

// PostgresRepository implements Repository (and UserJoiner) over dbx.DBTX.
// All identifiers come from the schema map passed at construction.
type PostgresRepository struct {
	db dbx.DBTX

	qCreate       string
	qFind         string
	qFindWithUser string
}

// NewPostgresRepository constructs a repository bound to the given DBTX,
// pre-rendering its queries from the schema map.
func NewPostgresRepository(db dbx.DBTX, sm schema.Map) *PostgresRepository {
	t := sm.Token
	u := sm.User
	return &PostgresRepository{
		db: db,
		qCreate: fmt.Sprintf(
			`INSERT INTO %q (%q, %q, %q, %q) VALUES ($1, $2, $3, $4)`,
			t.Name, t.ID, t.UserID, t.ExpiresAt, t.CreatedAt),
		qFind: fmt.Sprintf(
			`SELECT %q, %q, %q, %q FROM %q WHERE %q = $1`,
			t.ID, t.UserID, t.ExpiresAt, t.CreatedAt, t.Name, t.ID),
		qFindWithUser: fmt.Sprintf(
			`SELECT t.%q, t.%q, t.%q, t.%q, u.%q, u.%q, u.%q FROM %q t JOIN %q u ON u.%q = t.%q WHERE t.%q = $1`,
			t.ID, t.UserID, t.ExpiresAt, t.CreatedAt,
			u.Username, u.Role, u.AccountID,
			t.Name, u.Name, u.ID, t.UserID, t.ID),
	}
}

// Create inserts a new token row.
func (r *PostgresRepository) Create(ctx context.Context, token *models.RefToken) error {
	if _, err := r.db.ExecContext(ctx, r.qCreate,
		token.ID, token.UserID, token.ExpiresAt, token.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the bare token row for the given id, or common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.RefToken, error) {
	token := &models.RefToken{}
	err := r.db.QueryRowContext(ctx, r.qFind, id).
		Scan(&token.ID, &token.UserID, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// FindWithUser fetches the token and its owning user's username, role and
// account in one joined query.
func (r *PostgresRepository) FindWithUser(ctx context.Context, id string) (*models.RefToken, error) {
	token := &models.RefToken{}
	var username sql.NullString
	err := r.db.QueryRowContext(ctx, r.qFindWithUser, id).
		Scan(&token.ID, &token.UserID, &token.ExpiresAt, &token.CreatedAt,
			&username, &token.Role, &token.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	token.Username = username.String
	return token, nil
}
