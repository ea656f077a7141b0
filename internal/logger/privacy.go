package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

const defaultHashSalt = "default-salt-change-in-production"

var hashSalt = defaultHashSalt

// InitHashSalt loads the log hash salt from the environment. Call once at
// startup, after config loading. Without LOG_HASH_SALT set, a built-in
// development salt is used.
func InitHashSalt() {
	if salt := os.Getenv("LOG_HASH_SALT"); salt != "" {
		hashSalt = salt
	}
}

// InitHashSaltForTesting overrides the salt so tests produce stable hashes.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

// HashChatID creates a privacy-preserving hash of a chat ID. This allows
// tracing per-chat activity in logs without exposing actual chat IDs.
func HashChatID(chatID int64) string {
	data := fmt.Sprintf("%d:%s", chatID, hashSalt)
	hash := sha256.Sum256([]byte(data))
	// First 8 characters are enough to correlate log lines.
	return hex.EncodeToString(hash[:])[:8]
}
