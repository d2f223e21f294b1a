package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/dbx"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/ivanpetrenko/authgate/internal/server/schema"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx). All identifiers come from the schema map passed at
// construction.
type PostgresRepository struct {
	db dbx.DBTX

	qCreate          string
	qFindByID        string
	qFindByShareCode string
}

// NewPostgresRepository constructs a repository bound to the given DBTX,
// pre-rendering its queries from the schema map.
func NewPostgresRepository(db dbx.DBTX, sm schema.Map) *PostgresRepository {
	t := sm.Account
	return &PostgresRepository{
		db: db,
		qCreate: fmt.Sprintf(
			`INSERT INTO %q (%q, %q, %q, %q, %q) VALUES ($1, $2, $3, $4, $5)`,
			t.Name, t.ID, t.ShareCode, t.Extra, t.CreatedAt, t.UpdatedAt),
		qFindByID: fmt.Sprintf(
			`SELECT %q, %q, %q, %q, %q FROM %q WHERE %q = $1`,
			t.ID, t.ShareCode, t.Extra, t.CreatedAt, t.UpdatedAt, t.Name, t.ID),
		qFindByShareCode: fmt.Sprintf(
			`SELECT %q, %q, %q, %q, %q FROM %q WHERE %q = $1`,
			t.ID, t.ShareCode, t.Extra, t.CreatedAt, t.UpdatedAt, t.Name, t.ShareCode),
	}
}

// Create inserts a new account row.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) error {
	extra := account.Extra
	if extra == nil {
		extra = map[string]any{}
	}
	raw, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("marshal account extra: %w", err)
	}

	var shareCode sql.NullString
	if account.ShareCode != "" {
		shareCode = sql.NullString{String: account.ShareCode, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, r.qCreate,
		account.ID, shareCode, raw, account.CreatedAt, account.UpdatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindByID returns the account row for the given id, or common.ErrorNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, r.qFindByID, id))
}

// FindByShareCode returns the account owning the given share code, or
// common.ErrorNotFound.
func (r *PostgresRepository) FindByShareCode(ctx context.Context, code string) (*models.Account, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, r.qFindByShareCode, code))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var shareCode sql.NullString
	var raw []byte

	err := row.Scan(&account.ID, &shareCode, &raw, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.ShareCode = shareCode.String
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &account.Extra); err != nil {
			return nil, fmt.Errorf("unmarshal account extra: %w", err)
		}
	}
	return account, nil
}
