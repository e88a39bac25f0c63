// Package checksum computes content digests used as ETags by the authoring API.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether want (optionally quoted, ETag style) is the digest of data.
func Matches(data []byte, want string) bool {
	return strings.Trim(want, `"`) == Sum(data)
}
