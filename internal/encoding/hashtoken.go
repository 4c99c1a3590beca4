package encoding

import (
	"errors"
	"fmt"
)

// Hash tokens render 64-bit content hashes as short base-63 strings for
// debug logs, where full hex hashes drown out the surrounding text.
//
// Alphabet: A-Z (0-25), a-z (26-51), 0-9 (52-61), _ (62).
const (
	hashTokenBase     = 63
	hashTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_"
)

var (
	ErrEmptyToken   = errors.New("empty hash token")
	ErrInvalidToken = errors.New("invalid character in hash token")
	ErrTokenRange   = errors.New("hash token exceeds 64 bits")
)

// HashToken encodes a content hash as a base-63 string. Zero encodes to "A".
func HashToken(hash uint64) string {
	if hash == 0 {
		return "A"
	}

	// 11 characters cover the full uint64 range.
	var buf [11]byte
	pos := len(buf)

	for hash > 0 {
		pos--
		buf[pos] = hashTokenAlphabet[hash%hashTokenBase]
		hash /= hashTokenBase
	}

	return string(buf[pos:])
}

// ParseHashToken decodes a base-63 hash token back to the original hash.
func ParseHashToken(token string) (uint64, error) {
	if token == "" {
		return 0, ErrEmptyToken
	}

	var hash uint64
	for _, c := range token {
		val, err := tokenCharValue(c)
		if err != nil {
			return 0, err
		}
		if hash > (^uint64(0))/hashTokenBase {
			return 0, ErrTokenRange
		}
		hash = hash*hashTokenBase + val
	}

	return hash, nil
}

// IsHashToken reports whether a string is a well-formed hash token.
func IsHashToken(token string) bool {
	if token == "" {
		return false
	}
	for _, c := range token {
		if _, err := tokenCharValue(c); err != nil {
			return false
		}
	}
	return true
}

func tokenCharValue(c rune) (uint64, error) {
	switch {
	case c >= 'A' && c <= 'Z':
		return uint64(c - 'A'), nil
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 26, nil
	case c >= '0' && c <= '9':
		return uint64(c-'0') + 52, nil
	case c == '_':
		return 62, nil
	default:
		return 0, fmt.Errorf("%w: %c", ErrInvalidToken, c)
	}
}
