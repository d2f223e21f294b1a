// Package common defines shared constants and sentinel errors used across
// the authgate server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("already taken")

	// Code/token lifecycle errors.
	ErrorExpired = errors.New("expired")

	// Auth dispatch errors.
	ErrUnknownAuthScheme = errors.New("unknown auth type")
)
