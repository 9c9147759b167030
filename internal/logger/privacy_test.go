package logger

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	hashSalt = "test-salt-for-unit-tests"
	os.Exit(m.Run())
}

func TestHashUserID(t *testing.T) {
	t.Run("produces consistent hash for same user ID", func(t *testing.T) {
		require.Equal(t, HashUserID(12345), HashUserID(12345))
	})

	t.Run("produces different hashes for different user IDs", func(t *testing.T) {
		require.NotEqual(t, HashUserID(12345), HashUserID(67890))
	})

	t.Run("produces 8 character hash", func(t *testing.T) {
		require.Len(t, HashUserID(12345), 8)
	})

	t.Run("changes hash when salt changes", func(t *testing.T) {
		originalSalt := hashSalt
		defer func() { hashSalt = originalSalt }()

		hash1 := HashUserID(12345)
		hashSalt = "different-salt"
		require.NotEqual(t, hash1, HashUserID(12345))
	})
}

func TestInitHashSalt(t *testing.T) {
	originalSalt := hashSalt
	defer func() { hashSalt = originalSalt }()

	t.Run("reads LOG_HASH_SALT", func(t *testing.T) {
		t.Setenv("LOG_HASH_SALT", "salt-from-env")
		InitHashSalt()
		require.Equal(t, "salt-from-env", hashSalt)
	})

	t.Run("falls back to a default", func(t *testing.T) {
		t.Setenv("LOG_HASH_SALT", "")
		InitHashSalt()
		require.NotEmpty(t, hashSalt)
	})
}
