// Package cryptox wraps the one-way password hash primitive used by the
// credential flows. The hash is deterministic for a given (salt, password)
// pair, so login and reset can recompute and compare.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// HashPassword derives the stored password hash from the user's salt and the
// plaintext password. The salted input is "salt password" (single space
// separator); the salt additionally feeds argon2 directly.
func HashPassword(salt, password string) string {
	input := []byte(salt + " " + password)
	key := argon2.IDKey(input, []byte(salt), 1, 64*1024, 4, 32)
	return hex.EncodeToString(key)
}

// VerifyPassword recomputes the hash for the candidate password and compares
// it in constant time against the stored value.
func VerifyPassword(salt, password, storedHash string) bool {
	candidate := HashPassword(salt, password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}
