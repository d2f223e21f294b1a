package auth

import (
	"context"
	"errors"
	"time"

	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/server/models"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/tokens"
	"github.com/ivanpetrenko/authgate/internal/server/repositories/users"
)

// RefTokenAuthenticator validates opaque reference-token ids. When the token
// repository can join the owning user (tokens.UserJoiner), token and user are
// fetched in one query; otherwise the two rows are read sequentially and
// merged. Both paths yield the same token shape.
type RefTokenAuthenticator struct {
	tokens tokens.Repository
	users  users.Repository
}

// NewRefTokenAuthenticator constructs the authenticator over the given
// repositories.
func NewRefTokenAuthenticator(t tokens.Repository, u users.Repository) *RefTokenAuthenticator {
	return &RefTokenAuthenticator{tokens: t, users: u}
}

// Authenticate resolves the token id. An absent row, a zero expiry, or an
// expiry in the past all fail with common.ErrorUnauthorized.
func (a *RefTokenAuthenticator) Authenticate(ctx context.Context, value string) (models.AuthToken, error) {
	token, err := a.resolve(ctx, value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if token.Expired(time.Now()) {
		return nil, common.ErrorUnauthorized
	}

	return token, nil
}

func (a *RefTokenAuthenticator) resolve(ctx context.Context, id string) (*models.RefToken, error) {
	if joiner, ok := a.tokens.(tokens.UserJoiner); ok {
		return joiner.FindWithUser(ctx, id)
	}

	token, err := a.tokens.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := a.users.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	token.Username = owner.Username
	token.Role = owner.Role
	token.AccountID = owner.AccountID
	return token, nil
}
