package auth

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// TokenFingerprint produces a short stable identifier for a session
// artifact. Raw tokens are credentials and must never appear in logs; the
// fingerprint lets operators correlate repeated failures from the same
// cookie without exposing it.
func TokenFingerprint(artifact string) string {
	if artifact == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(artifact))
	return formatFingerprint(base58.Encode(hash[:]))
}

// formatFingerprint truncates a fingerprint for display (first 12 characters).
func formatFingerprint(fingerprint string) string {
	if len(fingerprint) <= 12 {
		return fingerprint
	}
	return fmt.Sprintf("%s...", fingerprint[:12])
}
