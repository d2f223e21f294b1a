package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/cryptox"
	"github.com/ivanpetrenko/authgate/internal/logging"
	"github.com/ivanpetrenko/authgate/internal/randx"
	"github.com/ivanpetrenko/authgate/internal/server/config"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/repomanager"
)

// ResetService issues and validates the numeric password-reset codes. Codes
// are single-slot per user: a new ForgotPassword overwrites the previous code.
type ResetService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	rand          randx.Source
	logger        logging.Logger
	callbacks     *Callbacks
	codeLength    int
	codeValidity  time.Duration
	tokenValidity time.Duration
}

// NewResetService constructs a ResetService using repositories and server
// config.
func NewResetService(db *sql.DB, m repomanager.RepositoryManager, rnd randx.Source, logger logging.Logger, cb *Callbacks, cfg *config.Config) *ResetService {
	return &ResetService{
		db:            db,
		repomanager:   m,
		rand:          rnd,
		logger:        logger,
		callbacks:     cb,
		codeLength:    cfg.ResetCodeLength,
		codeValidity:  cfg.ResetCodeValidityDuration,
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// ForgotPassword generates a fresh reset code for the user, persists it, and
// delivers it through the callback. The delivery runs after the write and its
// failure propagates: callers must treat ForgotPassword as potentially
// failing on a downstream delivery error even though the code is stored.
func (s *ResetService) ForgotPassword(ctx context.Context, username string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByUsername(ctx, scrubUsername(username))
	if err != nil {
		return err
	}

	code := fmt.Sprintf("%0*d", s.codeLength, s.rand.IntN(pow10(s.codeLength)))
	expiresAt := time.Now().Add(s.codeValidity)

	if err := repo.SetResetCode(ctx, user.ID, code, expiresAt); err != nil {
		return err
	}

	return s.callbacks.forgotPassword(ctx, user, code)
}

// ResetPassword validates the reset code (case-insensitively) and, on
// success, stores a new password hash computed with the user's existing salt
// and issues a fresh RefToken. The code's expiry must be set and in the
// future.
func (s *ResetService) ResetPassword(ctx context.Context, username, resetCode, password string) (*models.RefToken, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByUsername(ctx, scrubUsername(username))
	if err != nil {
		return nil, err
	}

	if user.ResetCode == "" || !strings.EqualFold(user.ResetCode, resetCode) {
		return nil, fmt.Errorf("wrong reset code: %w", common.ErrorUnauthorized)
	}
	if user.ResetCodeExpiresAt == nil || !time.Now().Before(*user.ResetCodeExpiresAt) {
		return nil, fmt.Errorf("reset code: %w", common.ErrorExpired)
	}

	v := &common.ValidationError{}
	validatePassword(password, v)
	if v.HasErrors() {
		return nil, v
	}

	hash := cryptox.HashPassword(user.Salt, password)
	if err := repo.SetPassword(ctx, user.ID, hash, time.Now()); err != nil {
		return nil, err
	}

	user.PasswordHash = hash
	return issueRefToken(ctx, s.repomanager.Tokens(s.db), s.rand, user, s.tokenValidity)
}
