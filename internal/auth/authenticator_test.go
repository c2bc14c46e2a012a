package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests use the minimum bcrypt cost — cost 12 would add ~250ms per hash.
func testBcrypt() *Bcrypt {
	return NewBcryptWithCost(4)
}

func TestBcrypt_RoundTrip(t *testing.T) {
	b := testBcrypt()

	stored, err := b.Hash("s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored, "stored value must not be the plaintext")

	assert.NoError(t, b.Verify(stored, "s3cret-pass"))
}

func TestBcrypt_Mismatch(t *testing.T) {
	b := testBcrypt()

	stored, err := b.Hash("correct")
	require.NoError(t, err)

	err = b.Verify(stored, "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCredentialMismatch)
}

func TestBcrypt_SamePasswordDifferentHashes(t *testing.T) {
	b := testBcrypt()

	h1, err := b.Hash("same")
	require.NoError(t, err)
	h2, err := b.Hash("same")
	require.NoError(t, err)

	// Random salt per hash: identical plaintexts must not collide.
	assert.NotEqual(t, h1, h2)
}

func TestBcrypt_RejectsOverlongPassword(t *testing.T) {
	b := testBcrypt()

	// bcrypt silently truncates at 72 bytes; Hash rejects instead.
	_, err := b.Hash(strings.Repeat("a", 73))
	require.Error(t, err)
}

func TestPlain_TrimmedEquality(t *testing.T) {
	p := NewPlain()

	stored, err := p.Hash("  legacy-pass  ")
	require.NoError(t, err)
	assert.Equal(t, "legacy-pass", stored, "Plain stores the trimmed plaintext")

	assert.NoError(t, p.Verify(stored, "legacy-pass"))
	assert.NoError(t, p.Verify(stored, "  legacy-pass "))

	err = p.Verify(stored, "other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCredentialMismatch))
}

func TestPlain_VerifiesLegacyStoredValue(t *testing.T) {
	// Data sets migrated from the legacy tool store the plaintext directly;
	// Plain must verify against it without any Hash round trip.
	p := NewPlain()
	assert.NoError(t, p.Verify("pass123", "pass123"))
	assert.Error(t, p.Verify("pass123", "PASS123"))
}
