package testutils

import (
	"context"
	"testing"
	"time"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// InsertUsers saves users with the given ids; names are the ids upper-cased.
func InsertUsers(t *testing.T, ctx context.Context, db *bun.DB, ids ...string) {
	t.Helper()
	repo := userdb.NewRepository(db)
	for _, id := range ids {
		if err := repo.Save(ctx, nil, &userdb.User{ID: id, Name: "User " + id}); err != nil {
			t.Fatalf("failed to insert user %s: %v", id, err)
		}
	}
}

// InsertCompleted stores a completed timer of duration d starting at init.
func InsertCompleted(t *testing.T, ctx context.Context, db *bun.DB, key timerdomain.Key, init time.Time, d time.Duration) {
	t.Helper()
	repo := timerdb.NewRepository(db)
	if _, err := repo.Insert(ctx, nil, key, init); err != nil {
		t.Fatalf("failed to insert timer %s: %v", key, err)
	}
	if err := repo.Complete(ctx, nil, key, init.Add(d)); err != nil {
		t.Fatalf("failed to complete timer %s: %v", key, err)
	}
}

// CompleteOpen stops an in-progress timer at stop.
func CompleteOpen(ctx context.Context, db *bun.DB, key timerdomain.Key, stop time.Time) error {
	return timerdb.NewRepository(db).Complete(ctx, nil, key, stop)
}
