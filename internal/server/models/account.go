// Package models defines the persisted entities of the credential store and
// the token variants returned by authentication.
package models

import "time"

// Account is the billing/ownership unit. One account holds one or more
// users; it is created on first registration or anonymous-user creation and
// never deleted by this core.
type Account struct {
	ID        string
	ShareCode string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Extra carries engine-specific fields supplied by the embedding
	// application; persisted as a JSON document.
	Extra map[string]any
}
