package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!pw")
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "s3cret!pw")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("s3cret!pw")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt must differ")
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("no-separator", "x")
	assert.ErrorIs(t, err, ErrInvalidHash)
	assert.False(t, ComparePasswords("no-separator", "x"))
}

func TestDummyPasswordHashNeverMatches(t *testing.T) {
	for _, password := range []string{"", "password", "s3cret!pw"} {
		ok, err := VerifyPassword(DummyPasswordHash, password)
		require.NoError(t, err, "dummy hash must be well formed so argon2 runs")
		assert.False(t, ok)
	}
}
