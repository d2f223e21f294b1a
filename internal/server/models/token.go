package models

import "time"

// Auth scheme names understood by the token registry.
const (
	SchemeRefToken  = "RefToken"
	SchemeShareCode = "ShareCode"
)

// Grant is the identity claim carried by every validated token.
type Grant struct {
	AccountID string
	Role      string
}

// AuthToken is the closed set of validated credential variants. Concrete
// types: *RefToken, *ShareCodeToken.
type AuthToken interface {
	// Scheme names the credential scheme that produced the token.
	Scheme() string

	// Grant returns the account/role claim the token carries.
	Grant() Grant
}

// RefToken is an opaque, expiring bearer credential naming a user. A user
// may hold any number of concurrently valid tokens; issuing a new one never
// revokes the old ones.
type RefToken struct {
	ID        string
	UserID    string
	Username  string
	Role      string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *RefToken) Scheme() string { return SchemeRefToken }

func (t *RefToken) Grant() Grant {
	return Grant{AccountID: t.AccountID, Role: t.Role}
}

// Expired reports whether the token is past its window. A zero ExpiresAt is
// treated as expired: a token without a lifetime is invalid.
func (t *RefToken) Expired(now time.Time) bool {
	return t.ExpiresAt.IsZero() || !now.Before(t.ExpiresAt)
}

// ShareCodeToken is the durable, account-scoped credential resolved from an
// account's share-code field. There is no per-token row; the share code
// itself is the credential, and it does not expire.
type ShareCodeToken struct {
	AccountID string
	Role      string
}

func (t *ShareCodeToken) Scheme() string { return SchemeShareCode }

func (t *ShareCodeToken) Grant() Grant {
	return Grant{AccountID: t.AccountID, Role: t.Role}
}
