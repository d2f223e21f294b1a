package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

	qCreate           string
	qUpdate           string
	qFindByID         string
	qFindByUsername   string
	qUsernameTaken    string
	qUsernamesByEmail string
	qUsernamesByPhone string
	qSetResetCode     string
	qSetPassword      string
	qMarkEmail        string
	qMarkPhone        string
}

// NewPostgresRepository constructs a repository bound to the given DBTX,
// pre-rendering its queries from the schema map.
func NewPostgresRepository(db dbx.DBTX, sm schema.Map) *PostgresRepository {
	t := sm.User

	selectCols := fmt.Sprintf(
		`%q, %q, %q, %q, %q, %q, %q, %q, %q, %q, %q, %q, %q, %q, %q, %q`,
		t.ID, t.AccountID, t.Username, t.FirstName, t.LastName,
		t.Email, t.EmailVerifiedAt, t.Phone, t.PhoneVerifiedAt,
		t.Role, t.Salt, t.PasswordHash, t.ResetCode, t.ResetCodeExpiresAt,
		t.CreatedAt, t.UpdatedAt)

	return &PostgresRepository{
		db: db,
		qCreate: fmt.Sprintf(
			`INSERT INTO %q (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			t.Name, selectCols),
		qUpdate: fmt.Sprintf(
			`UPDATE %q SET %q = $2, %q = $3, %q = $4, %q = $5, %q = $6, %q = $7, %q = $8, %q = $9, %q = $10, %q = $11, %q = $12, %q = $13, %q = $14, %q = $15 WHERE %q = $1`,
			t.Name, t.AccountID, t.Username, t.FirstName, t.LastName,
			t.Email, t.EmailVerifiedAt, t.Phone, t.PhoneVerifiedAt,
			t.Role, t.Salt, t.PasswordHash, t.ResetCode, t.ResetCodeExpiresAt,
			t.UpdatedAt, t.ID),
		qFindByID: fmt.Sprintf(
			`SELECT %s FROM %q WHERE %q = $1`, selectCols, t.Name, t.ID),
		qFindByUsername: fmt.Sprintf(
			`SELECT %s FROM %q WHERE %q = $1`, selectCols, t.Name, t.Username),
		qUsernameTaken: fmt.Sprintf(
			`SELECT COUNT(*) FROM %q WHERE %q = $1`, t.Name, t.Username),
		qUsernamesByEmail: fmt.Sprintf(
			`SELECT %q FROM %q WHERE %q = $1 AND %q IS NOT NULL`,
			t.Username, t.Name, t.Email, t.Username),
		qUsernamesByPhone: fmt.Sprintf(
			`SELECT %q FROM %q WHERE %q = $1 AND %q IS NOT NULL`,
			t.Username, t.Name, t.Phone, t.Username),
		qSetResetCode: fmt.Sprintf(
			`UPDATE %q SET %q = $2, %q = $3, %q = $4 WHERE %q = $1`,
			t.Name, t.ResetCode, t.ResetCodeExpiresAt, t.UpdatedAt, t.ID),
		qSetPassword: fmt.Sprintf(
			`UPDATE %q SET %q = $2, %q = $3 WHERE %q = $1`,
			t.Name, t.PasswordHash, t.UpdatedAt, t.ID),
		qMarkEmail: fmt.Sprintf(
			`UPDATE %q SET %q = $2, %q = $3 WHERE %q = $1`,
			t.Name, t.EmailVerifiedAt, t.UpdatedAt, t.ID),
		qMarkPhone: fmt.Sprintf(
			`UPDATE %q SET %q = $2, %q = $3 WHERE %q = $1`,
			t.Name, t.PhoneVerifiedAt, t.UpdatedAt, t.ID),
	}
}

// Create inserts a new user row. An empty username is stored as NULL so the
// unique index ignores anonymous users.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.db.ExecContext(ctx, r.qCreate,
		user.ID, user.AccountID, nullString(user.Username),
		user.FirstName, user.LastName,
		user.Email, nullTime(user.EmailVerifiedAt),
		user.Phone, nullTime(user.PhoneVerifiedAt),
		user.Role, user.Salt, user.PasswordHash,
		user.ResetCode, nullTime(user.ResetCodeExpiresAt),
		user.CreatedAt, user.UpdatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of the user row.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx, r.qUpdate,
		user.ID, user.AccountID, nullString(user.Username),
		user.FirstName, user.LastName,
		user.Email, nullTime(user.EmailVerifiedAt),
		user.Phone, nullTime(user.PhoneVerifiedAt),
		user.Role, user.Salt, user.PasswordHash,
		user.ResetCode, nullTime(user.ResetCodeExpiresAt),
		user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

// FindByID returns the user row for the given id, or common.ErrorNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, r.qFindByID, id))
}

// FindByUsername returns the user owning the username, or common.ErrorNotFound.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, r.qFindByUsername, username))
}

// UsernameTaken reports whether the username is already owned.
func (r *PostgresRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.qUsernameTaken, username).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// UsernamesByEmail lists the usernames of every named user with the email.
func (r *PostgresRepository) UsernamesByEmail(ctx context.Context, email string) ([]string, error) {
	return r.listUsernames(ctx, r.qUsernamesByEmail, email)
}

// UsernamesByPhone lists the usernames of every named user with the phone.
func (r *PostgresRepository) UsernamesByPhone(ctx context.Context, phone string) ([]string, error) {
	return r.listUsernames(ctx, r.qUsernamesByPhone, phone)
}

func (r *PostgresRepository) listUsernames(ctx context.Context, query, contact string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, contact)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		usernames = append(usernames, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return usernames, nil
}

// SetResetCode stores a reset code and its expiry on the user row,
// overwriting any previous one.
func (r *PostgresRepository) SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, r.qSetResetCode, userID, code, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

// SetPassword stores a new password hash. The salt column is untouched:
// resets reuse the existing salt.
func (r *PostgresRepository) SetPassword(ctx context.Context, userID, passwordHash string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.qSetPassword, userID, passwordHash, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

// MarkVerified stamps the verified-at column of the given channel.
func (r *PostgresRepository) MarkVerified(ctx context.Context, userID string, channel models.ContactChannel, at time.Time) error {
	query := r.qMarkEmail
	if channel == models.ChannelPhone {
		query = r.qMarkPhone
	}
	res, err := r.db.ExecContext(ctx, query, userID, at, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var username sql.NullString
	var emailVerifiedAt, phoneVerifiedAt, resetExpiresAt sql.NullTime

	err := row.Scan(&user.ID, &user.AccountID, &username,
		&user.FirstName, &user.LastName,
		&user.Email, &emailVerifiedAt,
		&user.Phone, &phoneVerifiedAt,
		&user.Role, &user.Salt, &user.PasswordHash,
		&user.ResetCode, &resetExpiresAt,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Username = username.String
	user.EmailVerifiedAt = timePtr(emailVerifiedAt)
	user.PhoneVerifiedAt = timePtr(phoneVerifiedAt)
	user.ResetCodeExpiresAt = timePtr(resetExpiresAt)
	return user, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
