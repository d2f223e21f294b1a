// Package users persists User rows and the credential material attached to
// them (salt, password hash, reset code, verification timestamps).
package users

import (
	"context"
	"time"

	"github.com/ivanpetrenko/authgate/internal/server/models"
)

// Repository describes user storage. Implementations return
// common.ErrorNotFound when a lookup matches nothing.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// UsernameTaken reports whether any user already owns the username.
	// This is a fast-path UX check; the unique index is the real guarantee.
	UsernameTaken(ctx context.Context, username string) (bool, error)

	UsernamesByEmail(ctx context.Context, email string) ([]string, error)
	UsernamesByPhone(ctx context.Context, phone string) ([]string, error)

	SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error
	SetPassword(ctx context.Context, userID, passwordHash string, at time.Time) error
	MarkVerified(ctx context.Context, userID string, channel models.ContactChannel, at time.Time) error
}
