package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashTokenSingleDigits(t *testing.T) {
	tests := []struct {
		hash     uint64
		expected string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "a"},
		{51, "z"},
		{52, "0"},
		{61, "9"},
		{62, "_"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, HashToken(tc.hash))
		})
	}
}

func TestHashTokenMultiDigit(t *testing.T) {
	tests := []struct {
		hash     uint64
		expected string
	}{
		{63, "BA"},
		{64, "BB"},
		{125, "B_"},
		{126, "CA"},
		{3969, "BAA"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, HashToken(tc.hash))
		})
	}
}

func TestHashTokenRoundTrip(t *testing.T) {
	hashes := []uint64{
		0, 1, 62, 63, 64, 100, 1000, 1000000,
		0xFFFFFFFF,
		0xFFFFFFFFFFFFFFFF,
	}

	for _, hash := range hashes {
		token := HashToken(hash)
		decoded, err := ParseHashToken(token)
		require.NoError(t, err, "token %s (from %d)", token, hash)
		assert.Equal(t, hash, decoded)
	}
}

func TestParseHashTokenErrors(t *testing.T) {
	_, err := ParseHashToken("")
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = ParseHashToken("AB!")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 12 characters of the top digit is past uint64 range.
	_, err = ParseHashToken("____________")
	assert.ErrorIs(t, err, ErrTokenRange)
}

func TestIsHashToken(t *testing.T) {
	assert.True(t, IsHashToken("A"))
	assert.True(t, IsHashToken("xK9_b"))
	assert.False(t, IsHashToken(""))
	assert.False(t, IsHashToken("a b"))
	assert.False(t, IsHashToken("!"))
}
