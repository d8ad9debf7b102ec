package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user insert or update collides
	// with the unique email constraint.
	ErrDuplicateEmail = errors.New("email is already in use")

	// ErrConcurrentModification is returned when a compare-and-swap status
	// transition observed a booking that already left WAITING.
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
