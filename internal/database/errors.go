package database

import "errors"

// Common errors returned by repositories.
var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateURL is returned when a record with the same canonical URL
	// already exists.
	ErrDuplicateURL = errors.New("duplicate canonical URL")
)
