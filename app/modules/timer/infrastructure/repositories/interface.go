package timerdb

import (
	"context"
	"time"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for timer persistence.
// All methods are context-aware for cancellation and timeout propagation.
//
// Error semantics:
//   - ErrNotFound: Record does not exist
//   - ErrNoRowsAffected: UPDATE matched no in-progress timer
//   - Other errors: Infrastructure failures (DB connection, query errors)
//
// The Find* queries return completed timers only, ordered by stop time and
// then user id so that callers sorting stably by duration get a deterministic order.
type Repository interface {
	// Insert creates an in-progress timer unless one already exists for the key.
	// created reports whether a row was written.
	Insert(ctx context.Context, db bun.IDB, key timerdomain.Key, initTime time.Time) (created bool, err error)

	// Get retrieves the timer for a key.
	Get(ctx context.Context, db bun.IDB, key timerdomain.Key) (*Timer, error)

	// Complete sets stop_time on an in-progress timer.
	// Returns ErrNoRowsAffected when no in-progress timer matches the key.
	Complete(ctx context.Context, db bun.IDB, key timerdomain.Key, stopTime time.Time) error

	// ListForUserDay returns all of a user's timers for one day, in star order.
	ListForUserDay(ctx context.Context, db bun.IDB, userID string, year, day int) ([]Timer, error)

	// FindCompleted returns completed timers for one day/star.
	FindCompleted(ctx context.Context, db bun.IDB, year, day, star int) ([]Timer, error)

	// FindCompletedForDay returns completed timers for both stars of a day.
	FindCompletedForDay(ctx context.Context, db bun.IDB, year, day int) ([]Timer, error)

	// FindCompletedForUser returns a user's completed timers for a year, in day/star order.
	FindCompletedForUser(ctx context.Context, db bun.IDB, userID string, year int) ([]Timer, error)
}
