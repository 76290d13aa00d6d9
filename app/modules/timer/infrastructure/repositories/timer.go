package timerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new timer repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func whereKey(q *bun.SelectQuery, key timerdomain.Key) *bun.SelectQuery {
	return q.
		Where("t.user_id = ?", key.UserID).
		Where("t.year = ?", key.Year).
		Where("t.day = ?", key.Day).
		Where("t.star = ?", key.Star)
}

// Insert creates an in-progress timer unless one already exists for the key.
func (r *Impl) Insert(ctx context.Context, db bun.IDB, key timerdomain.Key, initTime time.Time) (bool, error) {
	db = r.resolveDB(db)
	row := &Timer{
		UserID:   key.UserID,
		Year:     key.Year,
		Day:      key.Day,
		Star:     key.Star,
		InitTime: initTime,
	}
	res, err := db.NewInsert().
		Model(row).
		On("CONFLICT (user_id, year, day, star) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("timerdb.Insert: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("timerdb.Insert: rows affected: %w", err)
	}
	return rows > 0, nil
}

// Get retrieves the timer for a key.
func (r *Impl) Get(ctx context.Context, db bun.IDB, key timerdomain.Key) (*Timer, error) {
	db = r.resolveDB(db)
	row := new(Timer)
	err := whereKey(db.NewSelect().Model(row), key).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("timerdb.Get: %w", err)
	}
	return row, nil
}

// Complete sets stop_time on an in-progress timer.
func (r *Impl) Complete(ctx context.Context, db bun.IDB, key timerdomain.Key, stopTime time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Timer)(nil)).
		Set("stop_time = ?", stopTime).
		Where("user_id = ?", key.UserID).
		Where("year = ?", key.Year).
		Where("day = ?", key.Day).
		Where("star = ?", key.Star).
		Where("stop_time IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("timerdb.Complete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("timerdb.Complete: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// ListForUserDay returns all of a user's timers for one day, in star order.
func (r *Impl) ListForUserDay(ctx context.Context, db bun.IDB, userID string, year, day int) ([]Timer, error) {
	db = r.resolveDB(db)
	var rows []Timer
	err := db.NewSelect().
		Model(&rows).
		Where("t.user_id = ?", userID).
		Where("t.year = ?", year).
		Where("t.day = ?", day).
		Order("t.star ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("timerdb.ListForUserDay: %w", err)
	}
	return rows, nil
}

// FindCompleted returns completed timers for one day/star.
func (r *Impl) FindCompleted(ctx context.Context, db bun.IDB, year, day, star int) ([]Timer, error) {
	db = r.resolveDB(db)
	var rows []Timer
	err := db.NewSelect().
		Model(&rows).
		Where("t.year = ?", year).
		Where("t.day = ?", day).
		Where("t.star = ?", star).
		Where("t.stop_time IS NOT NULL").
		OrderExpr("t.stop_time ASC, t.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("timerdb.FindCompleted: %w", err)
	}
	return rows, nil
}

// FindCompletedForDay returns completed timers for both stars of a day.
func (r *Impl) FindCompletedForDay(ctx context.Context, db bun.IDB, year, day int) ([]Timer, error) {
	db = r.resolveDB(db)
	var rows []Timer
	err := db.NewSelect().
		Model(&rows).
		Where("t.year = ?", year).
		Where("t.day = ?", day).
		Where("t.stop_time IS NOT NULL").
		OrderExpr("t.stop_time ASC, t.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("timerdb.FindCompletedForDay: %w", err)
	}
	return rows, nil
}

// FindCompletedForUser returns a user's completed timers for a year, in day/star order.
func (r *Impl) FindCompletedForUser(ctx context.Context, db bun.IDB, userID string, year int) ([]Timer, error) {
	db = r.resolveDB(db)
	var rows []Timer
	err := db.NewSelect().
		Model(&rows).
		Where("t.user_id = ?", userID).
		Where("t.year = ?", year).
		Where("t.stop_time IS NOT NULL").
		OrderExpr("t.day ASC, t.star ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("timerdb.FindCompletedForUser: %w", err)
	}
	return rows, nil
}
