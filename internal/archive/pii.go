package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashContact returns the hex SHA-256 of a trimmed, lower-cased contact
// value, so manifests can be joined on email or phone without holding them.
func HashContact(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
