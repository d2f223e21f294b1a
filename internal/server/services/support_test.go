package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/dbx"
	"github.com/ivanpetrenko/authgate/internal/logging"
	"github.com/ivanpetrenko/authgate/internal/server/config"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	accountsrepo "github.com/ivanpetrenko/authgate/internal/server/repositories/accounts"
	tokensrepo "github.com/ivanpetrenko/authgate/internal/server/repositories/tokens"
	usersrepo "github.com/ivanpetrenko/authgate/internal/server/repositories/users"
	verificationsrepo "github.com/ivanpetrenko/authgate/internal/server/repositories/verifications"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

// fixedRand is a deterministic randx.Source: IntN always returns intN
// (clamped to the range), Hex returns a distinct counter-derived string of
// the right length on every call.
type fixedRand struct {
	intN int
	next int
}

func (f *fixedRand) IntN(n int) int {
	if f.intN >= n {
		return n - 1
	}
	return f.intN
}

func (f *fixedRand) Hex(size int) (string, error) {
	f.next++
	return fmt.Sprintf("%0*d", size*2, f.next), nil
}

// --- in-memory repositories ---

type memAccounts struct {
	byID map[string]*models.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]*models.Account{}}
}

func (m *memAccounts) Create(ctx context.Context, a *models.Account) error {
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccounts) FindByID(ctx context.Context, id string) (*models.Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) FindByShareCode(ctx context.Context, code string) (*models.Account, error) {
	for _, a := range m.byID {
		if a.ShareCode == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memUsers struct {
	byID map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func (m *memUsers) Create(ctx context.Context, u *models.User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) Update(ctx context.Context, u *models.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Username != "" && u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) UsernameTaken(ctx context.Context, username string) (bool, error) {
	for _, u := range m.byID {
		if u.Username != "" && u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) UsernamesByEmail(ctx context.Context, email string) ([]string, error) {
	var out []string
	for _, u := range m.byID {
		if u.Email == email {
			out = append(out, u.Username)
		}
	}
	return out, nil
}

func (m *memUsers) UsernamesByPhone(ctx context.Context, phone string) ([]string, error) {
	var out []string
	for _, u := range m.byID {
		if u.Phone == phone {
			out = append(out, u.Username)
		}
	}
	return out, nil
}

func (m *memUsers) SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	u, ok := m.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.ResetCode = code
	exp := expiresAt
	u.ResetCodeExpiresAt = &exp
	return nil
}

func (m *memUsers) SetPassword(ctx context.Context, userID, passwordHash string, at time.Time) error {
	u, ok := m.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = at
	return nil
}

func (m *memUsers) MarkVerified(ctx context.Context, userID string, channel models.ContactChannel, at time.Time) error {
	u, ok := m.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	stamp := at
	if channel == models.ChannelPhone {
		u.PhoneVerifiedAt = &stamp
	} else {
		u.EmailVerifiedAt = &stamp
	}
	return nil
}

type memTokens struct {
	byID map[string]*models.RefToken
}

func newMemTokens() *memTokens {
	return &memTokens{byID: map[string]*models.RefToken{}}
}

func (m *memTokens) Create(ctx context.Context, token *models.RefToken) error {
	cp := *token
	m.byID[token.ID] = &cp
	return nil
}

func (m *memTokens) Find(ctx context.Context, id string) (*models.RefToken, error) {
	tok, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *tok
	return &cp, nil
}

type memVerifications struct {
	byContact map[string]*models.VerificationRequest
}

func newMemVerifications() *memVerifications {
	return &memVerifications{byContact: map[string]*models.VerificationRequest{}}
}

func (m *memVerifications) Upsert(ctx context.Context, r *models.VerificationRequest) error {
	cp := *r
	m.byContact[r.Contact] = &cp
	return nil
}

func (m *memVerifications) Find(ctx context.Context, contact string) (*models.VerificationRequest, error) {
	r, ok := m.byContact[contact]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

// --- fake repo manager ---

type fakeRepoManager struct {
	accounts      *memAccounts
	users         *memUsers
	tokens        *memTokens
	verifications *memVerifications
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		accounts:      newMemAccounts(),
		users:         newMemUsers(),
		tokens:        newMemTokens(),
		verifications: newMemVerifications(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository { return m.accounts }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *fakeRepoManager) Tokens(db dbx.DBTX) tokensrepo.Repository     { return m.tokens }
func (m *fakeRepoManager) Verifications(db dbx.DBTX) verificationsrepo.Repository {
	return m.verifications
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }
