package auth

import (
	"context"
	"errors"

	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/accounts"
)

// ShareCodeAuthenticator validates an opaque share code against the account
// that owns it. Share codes are durable credentials: there is no per-token
// row and no expiry.
type ShareCodeAuthenticator struct {
	accounts accounts.Repository
	role     string
}

// NewShareCodeAuthenticator constructs the authenticator. role is the claim
// granted to every caller presenting a valid share code.
func NewShareCodeAuthenticator(a accounts.Repository, role string) *ShareCodeAuthenticator {
	return &ShareCodeAuthenticator{accounts: a, role: role}
}

// Authenticate resolves the share code to its account. An unknown code fails
// with common.ErrorUnauthorized.
func (a *ShareCodeAuthenticator) Authenticate(ctx context.Context, value string) (models.AuthToken, error) {
	if value == "" {
		return nil, common.ErrorUnauthorized
	}

	account, err := a.accounts.FindByShareCode(ctx, value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	return &models.ShareCodeToken{AccountID: account.ID, Role: a.role}, nil
}
