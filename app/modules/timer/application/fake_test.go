package timerservice

import (
	"context"
	"time"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Timer Repo
// ------------------------

type FakeTimerRepo struct {
	trace []string

	InsertFunc               func(ctx context.Context, db bun.IDB, key timerdomain.Key, initTime time.Time) (bool, error)
	GetFunc                  func(ctx context.Context, db bun.IDB, key timerdomain.Key) (*timerdb.Timer, error)
	CompleteFunc             func(ctx context.Context, db bun.IDB, key timerdomain.Key, stopTime time.Time) error
	ListForUserDayFunc       func(ctx context.Context, db bun.IDB, userID string, year, day int) ([]timerdb.Timer, error)
	FindCompletedFunc        func(ctx context.Context, db bun.IDB, year, day, star int) ([]timerdb.Timer, error)
	FindCompletedForDayFunc  func(ctx context.Context, db bun.IDB, year, day int) ([]timerdb.Timer, error)
	FindCompletedForUserFunc func(ctx context.Context, db bun.IDB, userID string, year int) ([]timerdb.Timer, error)
}

func NewFakeTimerRepo() *FakeTimerRepo {
	return &FakeTimerRepo{trace: []string{}}
}

func (f *FakeTimerRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTimerRepo) Insert(ctx context.Context, db bun.IDB, key timerdomain.Key, initTime time.Time) (bool, error) {
	f.record("Insert")
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, key, initTime)
	}
	return true, nil
}

func (f *FakeTimerRepo) Get(ctx context.Context, db bun.IDB, key timerdomain.Key) (*timerdb.Timer, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, key)
	}
	return nil, timerdb.ErrNotFound
}

func (f *FakeTimerRepo) Complete(ctx context.Context, db bun.IDB, key timerdomain.Key, stopTime time.Time) error {
	f.record("Complete")
	if f.CompleteFunc != nil {
		return f.CompleteFunc(ctx, db, key, stopTime)
	}
	return nil
}

func (f *FakeTimerRepo) ListForUserDay(ctx context.Context, db bun.IDB, userID string, year, day int) ([]timerdb.Timer, error) {
	f.record("ListForUserDay")
	if f.ListForUserDayFunc != nil {
		return f.ListForUserDayFunc(ctx, db, userID, year, day)
	}
	return nil, nil
}

func (f *FakeTimerRepo) FindCompleted(ctx context.Context, db bun.IDB, year, day, star int) ([]timerdb.Timer, error) {
	f.record("FindCompleted")
	if f.FindCompletedFunc != nil {
		return f.FindCompletedFunc(ctx, db, year, day, star)
	}
	return nil, nil
}

func (f *FakeTimerRepo) FindCompletedForDay(ctx context.Context, db bun.IDB, year, day int) ([]timerdb.Timer, error) {
	f.record("FindCompletedForDay")
	if f.FindCompletedForDayFunc != nil {
		return f.FindCompletedForDayFunc(ctx, db, year, day)
	}
	return nil, nil
}

func (f *FakeTimerRepo) FindCompletedForUser(ctx context.Context, db bun.IDB, userID string, year int) ([]timerdb.Timer, error) {
	f.record("FindCompletedForUser")
	if f.FindCompletedForUserFunc != nil {
		return f.FindCompletedForUserFunc(ctx, db, userID, year)
	}
	return nil, nil
}

func (f *FakeTimerRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ timerdb.Repository = (*FakeTimerRepo)(nil)

// ------------------------
// Fake User Repo
// ------------------------

type FakeUserRepo struct {
	ListAllFunc func(ctx context.Context, db bun.IDB) ([]userdb.User, error)
	GetByIDFunc func(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error)
	SaveFunc    func(ctx context.Context, db bun.IDB, user *userdb.User) error
}

func (f *FakeUserRepo) ListAll(ctx context.Context, db bun.IDB) ([]userdb.User, error) {
	if f.ListAllFunc != nil {
		return f.ListAllFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeUserRepo) GetByID(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, userID)
	}
	return &userdb.User{ID: userID, Name: userID}, nil
}

func (f *FakeUserRepo) Save(ctx context.Context, db bun.IDB, user *userdb.User) error {
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, db, user)
	}
	return nil
}

var _ userdb.Repository = (*FakeUserRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	Topics []string
	Err    error
}

func (p *FakePublisher) Publish(topic string, messages ...*message.Message) error {
	if p.Err != nil {
		return p.Err
	}
	for range messages {
		p.Topics = append(p.Topics, topic)
	}
	return nil
}
