package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrubUsername(t *testing.T) {
	assert.Equal(t, "johnsmith", scrubUsername("  JohnSmith "))
}

func TestScrubContact(t *testing.T) {
	assert.Equal(t, "john@x.com", scrubContact(" John@X.com "))
	assert.Equal(t, "+13162105368", scrubContact("+1 (316) 210-5368"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, validEmail("john@x.com"))
	assert.False(t, validEmail("john"))
	assert.False(t, validEmail("@x.com"))
	assert.False(t, validEmail("john@"))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, validPhone("+13162105368"))
	assert.True(t, validPhone("316 210 53 68 12"))
	assert.False(t, validPhone("123"))
}

func TestValidUsername(t *testing.T) {
	assert.True(t, validUsername("john.smith_99"))
	assert.False(t, validUsername("ab"))
	assert.False(t, validUsername("john smith"))
}

func TestValidateContact(t *testing.T) {
	scrubbed, isEmail, err := validateContact("John@X.com")
	assert.NoError(t, err)
	assert.True(t, isEmail)
	assert.Equal(t, "john@x.com", scrubbed)

	scrubbed, isEmail, err = validateContact("+1 316 210 5368")
	assert.NoError(t, err)
	assert.False(t, isEmail)
	assert.Equal(t, "+13162105368", scrubbed)

	_, _, err = validateContact("123")
	assert.Error(t, err)
}

func TestRandomName(t *testing.T) {
	first, last := randomName(&fixedRand{intN: 0})
	assert.Equal(t, colors[0], first)
	assert.Equal(t, animals[0], last)
}
