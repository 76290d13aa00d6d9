package userdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the persistence contract for the user directory.
//
// Error semantics:
//   - ErrNotFound: requested user does not exist (GetByID)
//   - other errors: infrastructure failures
type Repository interface {
	// ListAll returns every user ordered by name, then id.
	ListAll(ctx context.Context, db bun.IDB) ([]User, error)

	// GetByID retrieves a single user.
	GetByID(ctx context.Context, db bun.IDB, userID string) (*User, error)

	// Save creates the user or updates name and image of an existing one.
	Save(ctx context.Context, db bun.IDB, user *User) error
}
