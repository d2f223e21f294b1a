package services

import (
	"strings"
	"unicode"

	"github.com/ivanpetrenko/authgate/internal/common"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
	minPhoneDigits    = 10
)

// scrubUsername normalizes a username for storage and comparison: surrounding
// whitespace is dropped and the value is case-folded. Uniqueness is defined
// over the scrubbed form.
func scrubUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// scrubContact normalizes a contact string: emails are lower-cased, phone
// numbers keep only digits and a leading "+".
func scrubContact(contact string) string {
	contact = strings.TrimSpace(contact)
	if strings.Contains(contact, "@") {
		return strings.ToLower(contact)
	}
	return scrubPhone(contact)
}

func scrubPhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validUsername(username string) bool {
	if len(username) < minUsernameLength {
		return false
	}
	for _, r := range username {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

func validPhone(phone string) bool {
	digits := strings.TrimPrefix(scrubPhone(phone), "+")
	return len(digits) >= minPhoneDigits
}

// validateRegistration checks every registration field and accumulates one
// problem per offending field, so the caller sees them all at once.
func validateRegistration(req *RegisterRequest) *common.ValidationError {
	v := &common.ValidationError{}

	if !validUsername(scrubUsername(req.Username)) {
		v.Add("username", "must be at least 3 characters of letters, digits, '.', '_' or '-'")
	}
	validatePassword(req.Password, v)
	if req.Email != "" && !validEmail(req.Email) {
		v.Add("email", "must contain '@'")
	}
	if req.Phone != "" && !validPhone(req.Phone) {
		v.Add("phone", "must contain at least 10 digits")
	}
	if len(req.FirstName) > 100 {
		v.Add("firstName", "must be at most 100 characters")
	}
	if len(req.LastName) > 100 {
		v.Add("lastName", "must be at most 100 characters")
	}

	return v
}

func validatePassword(password string, v *common.ValidationError) {
	if password == "" {
		v.Add("password", "is required")
		return
	}
	if len(password) < minPasswordLength {
		v.Add("password", "must be at least 6 characters")
	}
}

// validateContact scrubs and classifies a contact string. It returns the
// scrubbed value, whether the contact is an email (as opposed to a phone
// number), and a ValidationError when the value fits neither channel.
func validateContact(contact string) (scrubbed string, isEmail bool, err error) {
	scrubbed = scrubContact(contact)

	if strings.Contains(scrubbed, "@") {
		if !validEmail(scrubbed) {
			v := &common.ValidationError{}
			v.Add("contact", "must be a valid email address")
			return "", false, v
		}
		return scrubbed, true, nil
	}

	if !validPhone(scrubbed) {
		v := &common.ValidationError{}
		v.Add("contact", "must be a valid email address or phone number")
		return "", false, v
	}
	return scrubbed, false, nil
}
