package timerhandlers

import (
	"context"
	"time"

	timerservice "github.com/Black-And-White-Club/advent-board/app/modules/timer/application"
	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
)

type FakeTimerService struct {
	StartTimerFunc     func(ctx context.Context, key timerdomain.Key, at time.Time) (*timerdomain.Timer, error)
	CompleteTimerFunc  func(ctx context.Context, key timerdomain.Key, at time.Time) (*timerdomain.Timer, error)
	ListForUserDayFunc func(ctx context.Context, userID string, year, day int) ([]timerdomain.Timer, error)
}

func (f *FakeTimerService) StartTimer(ctx context.Context, key timerdomain.Key, at time.Time) (*timerdomain.Timer, error) {
	if f.StartTimerFunc != nil {
		return f.StartTimerFunc(ctx, key, at)
	}
	return &timerdomain.Timer{Key: key, InitTime: at}, nil
}

func (f *FakeTimerService) CompleteTimer(ctx context.Context, key timerdomain.Key, at time.Time) (*timerdomain.Timer, error) {
	if f.CompleteTimerFunc != nil {
		return f.CompleteTimerFunc(ctx, key, at)
	}
	return nil, timerservice.ErrTimerNotFound
}

func (f *FakeTimerService) ListForUserDay(ctx context.Context, userID string, year, day int) ([]timerdomain.Timer, error) {
	if f.ListForUserDayFunc != nil {
		return f.ListForUserDayFunc(ctx, userID, year, day)
	}
	return nil, nil
}

var _ timerservice.Service = (*FakeTimerService)(nil)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
