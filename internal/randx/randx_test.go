package randx

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSource_IntNRange(t *testing.T) {
	src := New()
	for i := 0; i < 1000; i++ {
		v := src.IntN(10)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 10)
	}
}

func TestDefaultSource_Hex(t *testing.T) {
	src := New()
	s, err := src.Hex(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	_, err = hex.DecodeString(s)
	assert.NoError(t, err)
}
