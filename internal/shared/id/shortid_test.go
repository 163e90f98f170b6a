package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	for _, n := range []int{0, 1, 6, 40} {
		got, err := Generate(n)
		require.NoError(t, err)

		want := n
		if n == 0 {
			want = DefaultLength
		}
		assert.Len(t, got, want)
		for _, r := range got {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestNewReferralID_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		refID, err := NewReferralID()
		require.NoError(t, err)
		require.NoError(t, ValidatePrefix(refID, PrefixReferral))

		_, short, err := ParsePrefixedID(refID)
		require.NoError(t, err)
		assert.Len(t, short, DefaultLength)

		_, dup := seen[refID]
		assert.False(t, dup, "duplicate id %s", refID)
		seen[refID] = struct{}{}
	}
}

func TestNewGiftID_Prefix(t *testing.T) {
	giftID, err := NewGiftID()
	require.NoError(t, err)
	assert.NoError(t, ValidatePrefix(giftID, PrefixGift))
	assert.Error(t, ValidatePrefix(giftID, PrefixReferral))
}

func TestParsePrefixedID(t *testing.T) {
	tests := []struct {
		input      string
		wantPrefix string
		wantRest   string
		wantErr    bool
	}{
		{"ref_abc123", "ref", "abc123", false},
		{"gift_a_b", "gift", "a_b", false},
		{"nounderscore", "", "", true},
		{"ref_", "", "", true},
		{"_abc", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prefix, rest, err := ParsePrefixedID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrefix, prefix)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}
