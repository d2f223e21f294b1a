// Package tokens persists the opaque reference tokens issued on login,
// registration and anonymous-user creation.
package tokens

import (
	"context"

	"github.com/ivanpetrenko/authgate/internal/server/models"
)

// Repository describes reference-token storage. Implementations return
// common.ErrorNotFound when a lookup matches nothing.
type Repository interface {
	Create(ctx context.Context, token *models.RefToken) error

	// Find returns the bare token row (no user fields populated).
	Find(ctx context.Context, id string) (*models.RefToken, error)
}

// UserJoiner is the optional capability of storage engines that can fetch
// the token and its owning user in a single relational join. Engines without
// it are read twice and merged in memory; both paths produce the same
// result shape.
type UserJoiner interface {
	FindWithUser(ctx context.Context, id string) (*models.RefToken, error)
}
