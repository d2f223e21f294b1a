package models

import "time"

// VerificationRequest is an outstanding one-time code keyed by the scrubbed
// contact string. Only one request exists per contact; sending a new code
// overwrites the previous row. The record is not user-scoped — the code
// itself is the secret.
type VerificationRequest struct {
	ID        string
	Contact   string
	Code      int
	ExpiresAt time.Time
}

// Expired reports whether the code is past its window.
func (v *VerificationRequest) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
