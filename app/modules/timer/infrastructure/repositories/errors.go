package timerdb

import "errors"

// Sentinel errors for the repository layer.
// These are infrastructure-level errors that indicate database state, not business logic failures.
var (
	// ErrNotFound indicates the requested timer does not exist in the database.
	ErrNotFound = errors.New("timer not found")

	// ErrNoRowsAffected indicates an UPDATE affected zero rows.
	// For Complete this means the timer is missing or already stopped.
	ErrNoRowsAffected = errors.New("no rows affected")
)
