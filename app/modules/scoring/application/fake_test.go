package scoringservice

import (
	"context"
	"database/sql"
	"time"

	scoringdb "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/repositories"
	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Timer Repo
// ------------------------

// FakeTimerRepo answers the completed-timer queries from Rows, honoring the
// repository contract: completed only, ordered as stored.
type FakeTimerRepo struct {
	trace []string
	Rows  []timerdb.Timer
	Err   error
}

func (f *FakeTimerRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTimerRepo) filter(keep func(timerdb.Timer) bool) ([]timerdb.Timer, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []timerdb.Timer
	for _, r := range f.Rows {
		if r.StopTime != nil && keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *FakeTimerRepo) Insert(ctx context.Context, db bun.IDB, key timerdomain.Key, initTime time.Time) (bool, error) {
	f.record("Insert")
	return false, nil
}

func (f *FakeTimerRepo) Get(ctx context.Context, db bun.IDB, key timerdomain.Key) (*timerdb.Timer, error) {
	f.record("Get")
	return nil, timerdb.ErrNotFound
}

func (f *FakeTimerRepo) Complete(ctx context.Context, db bun.IDB, key timerdomain.Key, stopTime time.Time) error {
	f.record("Complete")
	return nil
}

func (f *FakeTimerRepo) ListForUserDay(ctx context.Context, db bun.IDB, userID string, year, day int) ([]timerdb.Timer, error) {
	f.record("ListForUserDay")
	return nil, nil
}

func (f *FakeTimerRepo) FindCompleted(ctx context.Context, db bun.IDB, year, day, star int) ([]timerdb.Timer, error) {
	f.record("FindCompleted")
	return f.filter(func(r timerdb.Timer) bool { return r.Year == year && r.Day == day && r.Star == star })
}

func (f *FakeTimerRepo) FindCompletedForDay(ctx context.Context, db bun.IDB, year, day int) ([]timerdb.Timer, error) {
	f.record("FindCompletedForDay")
	return f.filter(func(r timerdb.Timer) bool { return r.Year == year && r.Day == day })
}

func (f *FakeTimerRepo) FindCompletedForUser(ctx context.Context, db bun.IDB, userID string, year int) ([]timerdb.Timer, error) {
	f.record("FindCompletedForUser")
	return f.filter(func(r timerdb.Timer) bool { return r.UserID == userID && r.Year == year })
}

func (f *FakeTimerRepo) count(step string) int {
	n := 0
	for _, s := range f.trace {
		if s == step {
			n++
		}
	}
	return n
}

var _ timerdb.Repository = (*FakeTimerRepo)(nil)

// ------------------------
// Fake User Repo
// ------------------------

type FakeUserRepo struct {
	Users []userdb.User
	Err   error
	Now   func() time.Time
}

func (f *FakeUserRepo) ListAll(ctx context.Context, db bun.IDB) ([]userdb.User, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]userdb.User(nil), f.Users...), nil
}

func (f *FakeUserRepo) GetByID(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	for i := range f.Users {
		if f.Users[i].ID == userID {
			u := f.Users[i]
			return &u, nil
		}
	}
	return nil, userdb.ErrNotFound
}

// Save upserts by id and stamps UpdatedAt from Now, like the real repository.
func (f *FakeUserRepo) Save(ctx context.Context, db bun.IDB, user *userdb.User) error {
	if f.Err != nil {
		return f.Err
	}
	u := *user
	u.UpdatedAt = f.now()
	for i := range f.Users {
		if f.Users[i].ID == u.ID {
			f.Users[i] = u
			return nil
		}
	}
	f.Users = append(f.Users, u)
	return nil
}

func (f *FakeUserRepo) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

var _ userdb.Repository = (*FakeUserRepo)(nil)

// ------------------------
// Fake Snapshot Repo
// ------------------------

type FakeSnapshotRepo struct {
	ReplaceYearFunc func(ctx context.Context, db bun.IDB, year int, rows []scoringdb.StandingSnapshot) error
	ListYearFunc    func(ctx context.Context, db bun.IDB, year int) ([]scoringdb.StandingSnapshot, error)
	YearVersionFunc func(ctx context.Context, db bun.IDB, year int) (scoringdb.YearVersion, error)
}

func (f *FakeSnapshotRepo) ReplaceYear(ctx context.Context, db bun.IDB, year int, rows []scoringdb.StandingSnapshot) error {
	if f.ReplaceYearFunc != nil {
		return f.ReplaceYearFunc(ctx, db, year, rows)
	}
	return nil
}

func (f *FakeSnapshotRepo) ListYear(ctx context.Context, db bun.IDB, year int) ([]scoringdb.StandingSnapshot, error) {
	if f.ListYearFunc != nil {
		return f.ListYearFunc(ctx, db, year)
	}
	return []scoringdb.StandingSnapshot{}, nil
}

func (f *FakeSnapshotRepo) YearVersion(ctx context.Context, db bun.IDB, year int) (scoringdb.YearVersion, error) {
	if f.YearVersionFunc != nil {
		return f.YearVersionFunc(ctx, db, year)
	}
	return scoringdb.YearVersion{}, nil
}

var _ scoringdb.Repository = (*FakeSnapshotRepo)(nil)

// fakeVersion computes YearVersion from the fake tables the same way the
// SQL query does.
func fakeVersion(timers *FakeTimerRepo, users *FakeUserRepo, year int) scoringdb.YearVersion {
	var v scoringdb.YearVersion
	for _, r := range timers.Rows {
		if r.Year != year || r.StopTime == nil {
			continue
		}
		v.Completed++
		if !v.LastStop.Valid || r.StopTime.After(v.LastStop.Time) {
			v.LastStop = sql.NullTime{Time: *r.StopTime, Valid: true}
		}
	}
	for _, u := range users.Users {
		v.Users++
		if !v.UsersUpdated.Valid || u.UpdatedAt.After(v.UsersUpdated.Time) {
			v.UsersUpdated = sql.NullTime{Time: u.UpdatedAt, Valid: true}
		}
	}
	return v
}
