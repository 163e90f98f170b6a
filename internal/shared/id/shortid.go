// Package id generates the prefixed identifiers used for ledger records,
// e.g. "ref_4fQ9zK0bXw2L" for a referral and "gift_..." for a gift.
package id

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the length of the random part of a record id.
	DefaultLength = 12

	separator = "_"
)

const (
	PrefixReferral = "ref"
	PrefixGift     = "gift"
)

// bytes at or above this value are rejected so every symbol is equally likely
const maxUnbiased = 256 - 256%len(alphabet)

// Generate returns a random base62 string of the given length.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

func newPrefixed(prefix string) (string, error) {
	suffix, err := Generate(DefaultLength)
	if err != nil {
		return "", err
	}
	return prefix + separator + suffix, nil
}

// NewReferralID returns a fresh referral record id.
func NewReferralID() (string, error) { return newPrefixed(PrefixReferral) }

// NewGiftID returns a fresh gift id.
func NewGiftID() (string, error) { return newPrefixed(PrefixGift) }

// ParsePrefixedID splits "prefix_rest" at the first separator. Both halves
// must be non-empty.
func ParsePrefixedID(s string) (prefix, rest string, err error) {
	prefix, rest, ok := strings.Cut(s, separator)
	if !ok || prefix == "" || rest == "" {
		return "", "", fmt.Errorf("invalid prefixed ID format: %q", s)
	}
	return prefix, rest, nil
}

// ValidatePrefix checks that s is a prefixed id carrying want.
func ValidatePrefix(s, want string) error {
	prefix, _, err := ParsePrefixedID(s)
	if err != nil {
		return err
	}
	if prefix != want {
		return fmt.Errorf("invalid prefix: expected %s, got %s", want, prefix)
	}
	return nil
}
