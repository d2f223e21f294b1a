package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/cryptox"
	"github.com/ivanpetrenko/authgate/internal/dbx"
	"github.com/ivanpetrenko/authgate/internal/logging"
	"github.com/ivanpetrenko/authgate/internal/randx"
	"github.com/ivanpetrenko/authgate/internal/server/auth"
	"github.com/ivanpetrenko/authgate/internal/server/config"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/repomanager"
)

const (
	saltBytes      = 16
	shareCodeBytes = 8

	usernameDelimiter = ", "
)

// RegisterRequest carries one registration's input. UserID, when set, names
// an existing (typically anonymous) user whose account is upgraded in place
// instead of creating a new identity. Extra carries engine-specific account
// fields merged into the Account row on creation.
type RegisterRequest struct {
	UserID    string
	Username  string
	Password  string
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Role      string
	Extra     map[string]any
}

// Coordinator is the top-level orchestrator of the credential lifecycle:
// registration, login, anonymous-user creation, token dispatch, and username
// recovery.
type Coordinator struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	registry      *auth.Registry
	rand          randx.Source
	logger        logging.Logger
	callbacks     *Callbacks
	tokenValidity time.Duration
	defaultRole   string
}

// NewCoordinator constructs a Coordinator using repositories and server config.
func NewCoordinator(db *sql.DB, m repomanager.RepositoryManager, registry *auth.Registry, rnd randx.Source, logger logging.Logger, cb *Callbacks, cfg *config.Config) *Coordinator {
	return &Coordinator{
		db:            db,
		repomanager:   m,
		registry:      registry,
		rand:          rnd,
		logger:        logger,
		callbacks:     cb,
		tokenValidity: cfg.TokenValidityDuration,
		defaultRole:   cfg.DefaultRole,
	}
}

// Register creates a named identity, or upgrades an existing anonymous one
// when req.UserID is set. Account, User and the first RefToken are written in
// one transaction; the registration notification fires only after commit and
// its failure is logged, never propagated.
func (s *Coordinator) Register(ctx context.Context, req *RegisterRequest) (*models.RefToken, error) {
	username := scrubUsername(req.Username)

	var token *models.RefToken
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *dbx.Tx) error {
		usersRepo := s.repomanager.Users(tx)

		var existing *models.User
		if req.UserID != "" {
			u, err := usersRepo.FindByID(ctx, req.UserID)
			if err != nil {
				return fmt.Errorf("error loading user %s: %w", req.UserID, err)
			}
			existing = u
		}

		v := validateRegistration(req)
		if v.HasErrors() {
			return v
		}

		if existing == nil || existing.Username != username {
			taken, err := usersRepo.UsernameTaken(ctx, username)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("username %q: %w", username, common.ErrorConflict)
			}
		}

		salt, err := s.rand.Hex(saltBytes)
		if err != nil {
			return common.ErrorInternal
		}

		now := time.Now()
		newAccount := existing == nil

		accountID := ""
		if newAccount {
			account, err := s.buildAccount(ctx, req, now)
			if err != nil {
				return err
			}
			if err := s.repomanager.Accounts(tx).Create(ctx, account); err != nil {
				return err
			}
			accountID = account.ID
		} else {
			accountID = existing.AccountID
		}

		user := existing
		if user == nil {
			user = &models.User{ID: uuid.NewString(), CreatedAt: now}
		}
		user.AccountID = accountID
		user.Username = username
		user.FirstName = req.FirstName
		user.LastName = req.LastName
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
		user.Phone = scrubPhone(req.Phone)
		user.Role = req.Role
		if user.Role == "" {
			user.Role = s.defaultRole
		}
		user.Salt = salt
		user.PasswordHash = cryptox.HashPassword(salt, req.Password)
		user.UpdatedAt = now
		s.callbacks.decorateUser(ctx, user, req)

		if existing == nil {
			if err := usersRepo.Create(ctx, user); err != nil {
				return err
			}
		} else {
			if err := usersRepo.Update(ctx, user); err != nil {
				return err
			}
		}

		registered := *user
		tx.AfterCommit(func(ctx context.Context) {
			if err := s.callbacks.registered(ctx, &registered, newAccount); err != nil {
				s.logger.Error(ctx, "registration notification failed", "user_id", registered.ID, "error", err.Error())
			}
		})

		token, err = issueRefToken(ctx, s.repomanager.Tokens(tx), s.rand, user, s.tokenValidity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// CreateAnonymousUser creates a fresh Account plus a User with no username or
// password, names it from the word lists, and issues a RefToken. Every call
// creates a new identity.
func (s *Coordinator) CreateAnonymousUser(ctx context.Context) (*models.RefToken, error) {
	var token *models.RefToken
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *dbx.Tx) error {
		now := time.Now()

		account, err := s.buildAccount(ctx, nil, now)
		if err != nil {
			return err
		}
		if err := s.repomanager.Accounts(tx).Create(ctx, account); err != nil {
			return err
		}

		first, last := randomName(s.rand)
		user := &models.User{
			ID:        uuid.NewString(),
			AccountID: account.ID,
			FirstName: first,
			LastName:  last,
			Role:      s.defaultRole,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.callbacks.decorateUser(ctx, user, nil)
		if err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}

		token, err = issueRefToken(ctx, s.repomanager.Tokens(tx), s.rand, user, s.tokenValidity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// Login verifies the username/password pair and issues a fresh RefToken.
// Older tokens stay valid. An unknown username fails NotFound; a wrong
// password fails Unauthorized without saying which part was wrong.
func (s *Coordinator) Login(ctx context.Context, username, password string) (*models.RefToken, error) {
	user, err := s.repomanager.Users(s.db).FindByUsername(ctx, scrubUsername(username))
	if err != nil {
		return nil, err
	}

	if !cryptox.VerifyPassword(user.Salt, password, user.PasswordHash) {
		return nil, fmt.Errorf("incorrect password: %w", common.ErrorUnauthorized)
	}

	return issueRefToken(ctx, s.repomanager.Tokens(s.db), s.rand, user, s.tokenValidity)
}

// Authenticate resolves an opaque (scheme, value) credential pair through the
// token registry.
func (s *Coordinator) Authenticate(ctx context.Context, scheme, value string) (models.AuthToken, error) {
	return s.registry.Authenticate(ctx, scheme, value)
}

// CheckUsername reports whether the (scrubbed) username is still available.
func (s *Coordinator) CheckUsername(ctx context.Context, username string) (bool, error) {
	taken, err := s.repomanager.Users(s.db).UsernameTaken(ctx, scrubUsername(username))
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// ForgotUsername looks up every username registered under the contact and
// delivers them through the callback. Zero matches still delivers an empty
// string; callback failures propagate to the caller.
func (s *Coordinator) ForgotUsername(ctx context.Context, contact string) error {
	scrubbed, isEmail, err := validateContact(contact)
	if err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)
	var usernames []string
	if isEmail {
		usernames, err = repo.UsernamesByEmail(ctx, scrubbed)
	} else {
		usernames, err = repo.UsernamesByPhone(ctx, scrubbed)
	}
	if err != nil {
		return err
	}

	nonEmpty := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if u != "" {
			nonEmpty = append(nonEmpty, u)
		}
	}

	return s.callbacks.forgotUsername(ctx, scrubbed, strings.Join(nonEmpty, usernameDelimiter))
}

// buildAccount assembles a new Account row with a fresh share code, merging
// any engine-specific extra fields supplied with the request.
func (s *Coordinator) buildAccount(ctx context.Context, req *RegisterRequest, now time.Time) (*models.Account, error) {
	code, err := s.rand.Hex(shareCodeBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}

	account := &models.Account{
		ID:        uuid.NewString(),
		ShareCode: code,
		CreatedAt: now,
		UpdatedAt: now,
		Extra:     map[string]any{},
	}
	if req != nil {
		for k, val := range req.Extra {
			account.Extra[k] = val
		}
	}
	s.callbacks.decorateAccount(ctx, account, req)
	return account, nil
}
