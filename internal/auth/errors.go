package auth

import "errors"

// Verification failures are all handled the same way by callers (redirect
// to login, delete the cookie) but stay distinct so logs and metrics can
// tell a stale session from a forged or corrupted one.
var (
	// ErrMissingSecret indicates the signing secret is absent. This is a
	// configuration error: fatal at startup, never a per-request condition.
	ErrMissingSecret = errors.New("session signing secret is not configured")

	// ErrTokenExpired indicates the artifact's exp claim is in the past.
	ErrTokenExpired = errors.New("session token expired")

	// ErrTokenMalformed indicates the artifact is structurally invalid or
	// its claims payload failed the schema check.
	ErrTokenMalformed = errors.New("session token malformed")

	// ErrSignatureInvalid indicates the artifact was not signed with the
	// configured secret.
	ErrSignatureInvalid = errors.New("session token signature invalid")
)
