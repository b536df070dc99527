// Package digest provides SHA-256 content digest helpers.
//
// Digests are canonically "sha256:" followed by 64 lowercase hex characters.
// Cache directory names strip the prefix; everything in memory carries it.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Prefix is the canonical algorithm prefix for component digests.
const Prefix = "sha256:"

const hexLen = 64

// ForBytes computes the canonical digest of data.
func ForBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return Prefix + hex.EncodeToString(sum[:])
}

// Normalize prefixes s with "sha256:" unless it already carries it.
func Normalize(s string) string {
	if strings.HasPrefix(s, Prefix) {
		return s
	}

	return Prefix + s
}

// TrimPrefix strips the "sha256:" prefix, or a leading "@" as found in
// OCI digest-pinned references.
func TrimPrefix(s string) string {
	if trimmed, ok := strings.CutPrefix(s, Prefix); ok {
		return trimmed
	}

	return strings.TrimPrefix(s, "@")
}

// IsDigest reports whether s is a full canonical digest string.
func IsDigest(s string) bool {
	return strings.HasPrefix(s, Prefix) && len(s) == len(Prefix)+hexLen
}
