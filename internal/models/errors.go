package models

import "errors"

// Sentinel errors shared by repositories, services and handlers. Callers
// classify failures with errors.Is and map them to HTTP statuses at the
// handler boundary.
//
// ErrNotFound covers both a genuinely missing record and a record owned by
// another user, so responses never reveal whether a guessed id exists.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
)
