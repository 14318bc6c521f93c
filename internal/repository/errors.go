package repository

import (
	"errors"
	"strings"
)

// Sentinel errors services and handlers branch on. Repository methods
// wrap them with entity-specific context, so match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// isDuplicateKeyError detects unique-constraint violations across
// PostgreSQL (23505) and SQLite error phrasing.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "23505")
}
