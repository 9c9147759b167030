package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

var hashSalt string

// InitHashSalt loads the log hash salt from the environment. In production,
// set LOG_HASH_SALT.
func InitHashSalt() {
	hashSalt = os.Getenv("LOG_HASH_SALT")
	if hashSalt == "" {
		hashSalt = "default-salt-change-in-production"
	}
}

// HashUserID creates a privacy-preserving hash of a user ID.
// This allows tracking user actions without exposing actual user IDs.
func HashUserID(userID int64) string {
	data := fmt.Sprintf("%d:%s", userID, hashSalt)
	hash := sha256.Sum256([]byte(data))
	// First 8 characters for readability.
	return hex.EncodeToString(hash[:])[:8]
}
