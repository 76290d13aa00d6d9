package scoringdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new snapshot repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// ReplaceYear deletes the year's rows and inserts rows.
func (r *Impl) ReplaceYear(ctx context.Context, db bun.IDB, year int, rows []StandingSnapshot) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().
		Model((*StandingSnapshot)(nil)).
		Where("year = ?", year).
		Exec(ctx); err != nil {
		return fmt.Errorf("scoringdb.ReplaceYear: delete: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("scoringdb.ReplaceYear: insert: %w", err)
	}
	return nil
}

// ListYear returns the year's rows by position.
func (r *Impl) ListYear(ctx context.Context, db bun.IDB, year int) ([]StandingSnapshot, error) {
	db = r.resolveDB(db)
	rows := []StandingSnapshot{}
	err := db.NewSelect().
		Model(&rows).
		Where("ss.year = ?", year).
		Order("ss.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scoringdb.ListYear: %w", err)
	}
	return rows, nil
}

// YearVersion reads the year's completion and user counters in one query.
func (r *Impl) YearVersion(ctx context.Context, db bun.IDB, year int) (YearVersion, error) {
	db = r.resolveDB(db)
	var v YearVersion
	err := db.NewRaw(`
		SELECT
			(SELECT count(*) FROM timers WHERE year = ? AND stop_time IS NOT NULL) AS completed,
			(SELECT max(stop_time) FROM timers WHERE year = ?) AS last_stop,
			(SELECT count(*) FROM users) AS users,
			(SELECT max(updated_at) FROM users) AS users_updated`,
		year, year,
	).Scan(ctx, &v)
	if err != nil {
		return YearVersion{}, fmt.Errorf("scoringdb.YearVersion: %w", err)
	}
	return v, nil
}
