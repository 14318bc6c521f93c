package bunx

import "github.com/google/uuid"

// NewID generates a time-ordered UUIDv7 string for database primary keys.
// UUIDv7 keeps inserts roughly index-ordered and works on both PostgreSQL
// and SQLite without a gen_random_uuid() dependency.
//
// Panics if UUID generation fails, which only occurs when the entropy
// source is exhausted; no request can proceed safely at that point anyway.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
