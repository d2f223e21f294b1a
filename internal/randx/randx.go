// Package randx abstracts the sources of randomness used when minting
// numeric codes, salts, and word-list picks, so tests can substitute a
// deterministic source and assert exact values.
package randx

import (
	"math/rand/v2"

	"github.com/ivanpetrenko/authgate/internal/common"
)

// Source produces the random values the credential flows consume.
type Source interface {
	// IntN returns a uniform value in [0, n). n must be > 0.
	IntN(n int) int

	// Hex returns a random hexadecimal string of 2*size characters.
	Hex(size int) (string, error)
}

type defaultSource struct{}

// New returns the production Source: math/rand/v2 for small uniform draws,
// crypto/rand for credential material.
func New() Source {
	return defaultSource{}
}

func (defaultSource) IntN(n int) int {
	return rand.IntN(n)
}

func (defaultSource) Hex(size int) (string, error) {
	return common.MakeRandHexString(size)
}
