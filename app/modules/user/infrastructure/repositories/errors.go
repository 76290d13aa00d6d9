package userdb

import "errors"

// ErrNotFound is returned by GetByID when no user has the id. The timer and
// scoring services translate it into their own ErrUserNotFound.
var ErrNotFound = errors.New("user record not found")
