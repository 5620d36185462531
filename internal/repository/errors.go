// Package repository implements the engine's store interfaces on
// MySQL.  Lookup misses are reported with the engine's typed
// not-found errors so that handlers and the engine classify them the
// same way; ErrConflict covers database-level uniqueness violations.
package repository

import "errors"

// ErrConflict is returned when an insert or update collides with an
// existing row, such as a duplicate ticket number or email.  Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by AccountRepo.Create when the email is
// already registered.
var ErrEmailExists = errors.New("email already exists")
