package models

import "time"

// User is an authenticatable identity belonging to one Account.
//
// Username is empty until claimed (anonymous users); once set it is unique
// across all users — the schema enforces this with a unique index, the
// application-level check is only a fast-path courtesy.
type User struct {
	ID        string
	AccountID string
	Username  string
	FirstName string
	LastName  string

	Email           string
	EmailVerifiedAt *time.Time
	Phone           string
	PhoneVerifiedAt *time.Time

	Role string

	// Salt is a fresh random value generated each time the password is set;
	// PasswordHash is always hash(salt ++ " " ++ plaintext).
	Salt         string
	PasswordHash string

	// Single-slot reset code: a new forgot-password request overwrites the
	// previous one.
	ResetCode          string
	ResetCodeExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Anonymous reports whether the user has not yet claimed a username.
func (u *User) Anonymous() bool {
	return u.Username == ""
}

// ContactFor returns the user's stored contact value for the given channel.
func (u *User) ContactFor(channel ContactChannel) string {
	if channel == ChannelPhone {
		return u.Phone
	}
	return u.Email
}

// ContactChannel names a verification channel.
type ContactChannel string

const (
	ChannelEmail ContactChannel = "email"
	ChannelPhone ContactChannel = "phone"
)
