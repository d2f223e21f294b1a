package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/dbx"
	"github.com/ivanpetrenko/authgate/internal/logging"
	"github.com/ivanpetrenko/authgate/internal/randx"
	"github.com/ivanpetrenko/authgate/internal/server/config"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/repomanager"
)

// VerifyRequest names the user being verified and the code(s) the caller
// received. A channel participates when its code is positive; at least one
// channel must participate.
type VerifyRequest struct {
	UserID    string
	EmailCode int
	PhoneCode int
}

// VerificationService issues and validates the one-time contact-verification
// codes shared by the email and phone channels.
type VerificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	rand        randx.Source
	logger      logging.Logger
	callbacks   *Callbacks
	digits      int
	mask        string
	validity    time.Duration
}

// NewVerificationService constructs a VerificationService using repositories
// and server config.
func NewVerificationService(db *sql.DB, m repomanager.RepositoryManager, rnd randx.Source, logger logging.Logger, cb *Callbacks, cfg *config.Config) *VerificationService {
	return &VerificationService{
		db:          db,
		repomanager: m,
		rand:        rnd,
		logger:      logger,
		callbacks:   cb,
		digits:      cfg.VerifyCodeDigits,
		mask:        cfg.VerifyCodeMask,
		validity:    cfg.VerifyCodeValidityDuration,
	}
}

// SendVerifyCode generates a fresh code for the contact, stores it (replacing
// any outstanding code for the same contact), and dispatches it over the
// matching channel. The dispatch runs inside the transaction: a delivery
// failure rolls the just-written code back, so a code is never outstanding
// without a successful send attempt.
func (s *VerificationService) SendVerifyCode(ctx context.Context, contact string) error {
	scrubbed, isEmail, err := validateContact(contact)
	if err != nil {
		return err
	}

	code := s.generateCode()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *dbx.Tx) error {
		request := &models.VerificationRequest{
			ID:        uuid.NewString(),
			Contact:   scrubbed,
			Code:      code,
			ExpiresAt: time.Now().Add(s.validity),
		}
		if err := s.repomanager.Verifications(tx).Upsert(ctx, request); err != nil {
			return err
		}

		formatted := formatCode(code, s.mask)
		if isEmail {
			return s.callbacks.sendEmailCode(ctx, scrubbed, formatted)
		}
		return s.callbacks.sendPhoneCode(ctx, scrubbed, formatted)
	})
}

// SendVerifyCodeToUser sends a verification code to the contact the user has
// on file for the given channel. A user without that contact fails NotFound.
func (s *VerificationService) SendVerifyCodeToUser(ctx context.Context, userID string, channel models.ContactChannel) error {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		return err
	}

	contact := user.ContactFor(channel)
	if contact == "" {
		return fmt.Errorf("user has no %s contact: %w", channel, common.ErrorNotFound)
	}
	return s.SendVerifyCode(ctx, contact)
}

// Verify checks the supplied code(s) against the outstanding requests for the
// user's contacts and stamps the matching verified-at timestamps. All stamps
// commit together. After a successful commit the verified notification fires
// synchronously and its failure propagates to the caller.
func (s *VerificationService) Verify(ctx context.Context, req *VerifyRequest) error {
	if req.EmailCode <= 0 && req.PhoneCode <= 0 {
		v := &common.ValidationError{}
		v.Add("code", "at least one of emailCode or phoneCode must be positive")
		return v
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, req.UserID)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *dbx.Tx) error {
		now := time.Now()
		if req.EmailCode > 0 {
			if err := s.verifyChannel(ctx, tx, user, models.ChannelEmail, req.EmailCode, now); err != nil {
				return err
			}
		}
		if req.PhoneCode > 0 {
			if err := s.verifyChannel(ctx, tx, user, models.ChannelPhone, req.PhoneCode, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.callbacks.verified(ctx, req)
}

func (s *VerificationService) verifyChannel(ctx context.Context, tx *dbx.Tx, user *models.User, channel models.ContactChannel, code int, now time.Time) error {
	contact := user.ContactFor(channel)
	if contact == "" {
		return fmt.Errorf("user has no %s contact: %w", channel, common.ErrorNotFound)
	}
	scrubbed, _, err := validateContact(contact)
	if err != nil {
		return err
	}

	request, err := s.repomanager.Verifications(tx).Find(ctx, scrubbed)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("no outstanding code for %s: %w", channel, common.ErrorUnauthorized)
		}
		return err
	}

	if request.Code != code {
		return fmt.Errorf("wrong %s code: %w", channel, common.ErrorUnauthorized)
	}
	if request.Expired(now) {
		return fmt.Errorf("%s code: %w", channel, common.ErrorExpired)
	}

	return s.repomanager.Users(tx).MarkVerified(ctx, user.ID, channel, now)
}

// generateCode draws a uniform code with exactly s.digits digits, i.e. in
// [10^(d-1), 10^d).
func (s *VerificationService) generateCode() int {
	low := pow10(s.digits - 1)
	return low + s.rand.IntN(pow10(s.digits)-low)
}

func pow10(n int) int {
	v := 1
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// formatCode renders the numeric code through the delivery mask, one '#' per
// digit ("123456" + "###-###" → "123-456"). A mask with the wrong number of
// holes falls back to the bare digits.
func formatCode(code int, mask string) string {
	digits := fmt.Sprintf("%d", code)
	if strings.Count(mask, "#") != len(digits) {
		return digits
	}

	var b strings.Builder
	next := 0
	for _, r := range mask {
		if r == '#' {
			b.WriteByte(digits[next])
			next++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
