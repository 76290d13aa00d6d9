package scoringdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository persists standings snapshots.
type Repository interface {
	// ReplaceYear deletes the year's rows and inserts rows. Run it inside a
	// transaction so readers never see a partial snapshot.
	ReplaceYear(ctx context.Context, db bun.IDB, year int, rows []StandingSnapshot) error

	// ListYear returns the year's rows by position. An absent snapshot is an empty slice.
	ListYear(ctx context.Context, db bun.IDB, year int) ([]StandingSnapshot, error)

	// YearVersion reads the year's completion and user counters in one query.
	YearVersion(ctx context.Context, db bun.IDB, year int) (YearVersion, error)
}
