// Package auth implements the polymorphic credential dispatch: a registry
// maps scheme names to Authenticator implementations, each of which resolves
// one kind of opaque credential value into a validated token.
package auth

import (
	"context"
	"fmt"

	"github.com/ivanpetrenko/authgate/internal/common"
	"github.com/ivanpetrenko/authgate/internal/server/models"
)

// Authenticator resolves one credential scheme's opaque value into a
// validated token. Implementations return common.ErrorUnauthorized for
// unknown or expired credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, value string) (models.AuthToken, error)
}

// Registry is a fixed scheme-to-authenticator mapping built once at startup.
type Registry struct {
	byScheme map[string]Authenticator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byScheme: make(map[string]Authenticator)}
}

// Register binds an authenticator to a scheme name, replacing any previous
// binding.
func (r *Registry) Register(scheme string, a Authenticator) {
	r.byScheme[scheme] = a
}

// Authenticate dispatches to the authenticator registered for scheme. An
// unknown scheme is an explicit error, never a silent fallback.
func (r *Registry) Authenticate(ctx context.Context, scheme, value string) (models.AuthToken, error) {
	a, ok := r.byScheme[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownAuthScheme, scheme)
	}
	return a.Authenticate(ctx, value)
}
