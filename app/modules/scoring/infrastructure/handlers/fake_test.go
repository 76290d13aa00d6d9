package scoringhandlers

import (
	"context"
	"io"

	scoringservice "github.com/Black-And-White-Club/advent-board/app/modules/scoring/application"
)

// FakeScoringService implements scoringservice.Service for handler testing.
type FakeScoringService struct {
	trace []string

	DayLeaderboardFunc  func(ctx context.Context, year, day int, star *int) ([]scoringservice.DayEntry, error)
	YearLeaderboardFunc func(ctx context.Context, year int) ([]scoringservice.Standing, error)
	UserYearDetailFunc  func(ctx context.Context, userID string, year int) (*scoringservice.UserDetail, error)
	YearChartFunc       func(ctx context.Context, year int, w io.Writer) error
	ExportYearFunc      func(ctx context.Context, year int, w io.Writer) error
	SnapshotYearFunc    func(ctx context.Context, year int) ([]scoringservice.Standing, error)
	GetSnapshotFunc     func(ctx context.Context, year int) ([]scoringservice.Standing, error)

	Invalidated []int
}

func (f *FakeScoringService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeScoringService) Trace() []string {
	return f.trace
}

func (f *FakeScoringService) DayLeaderboard(ctx context.Context, year, day int, star *int) ([]scoringservice.DayEntry, error) {
	f.record("DayLeaderboard")
	if f.DayLeaderboardFunc != nil {
		return f.DayLeaderboardFunc(ctx, year, day, star)
	}
	return []scoringservice.DayEntry{}, nil
}

func (f *FakeScoringService) YearLeaderboard(ctx context.Context, year int) ([]scoringservice.Standing, error) {
	f.record("YearLeaderboard")
	if f.YearLeaderboardFunc != nil {
		return f.YearLeaderboardFunc(ctx, year)
	}
	return []scoringservice.Standing{}, nil
}

func (f *FakeScoringService) UserYearDetail(ctx context.Context, userID string, year int) (*scoringservice.UserDetail, error) {
	f.record("UserYearDetail")
	if f.UserYearDetailFunc != nil {
		return f.UserYearDetailFunc(ctx, userID, year)
	}
	return &scoringservice.UserDetail{UserID: userID}, nil
}

func (f *FakeScoringService) YearChart(ctx context.Context, year int, w io.Writer) error {
	f.record("YearChart")
	if f.YearChartFunc != nil {
		return f.YearChartFunc(ctx, year, w)
	}
	return nil
}

func (f *FakeScoringService) ExportYear(ctx context.Context, year int, w io.Writer) error {
	f.record("ExportYear")
	if f.ExportYearFunc != nil {
		return f.ExportYearFunc(ctx, year, w)
	}
	return nil
}

func (f *FakeScoringService) SnapshotYear(ctx context.Context, year int) ([]scoringservice.Standing, error) {
	f.record("SnapshotYear")
	if f.SnapshotYearFunc != nil {
		return f.SnapshotYearFunc(ctx, year)
	}
	return []scoringservice.Standing{}, nil
}

func (f *FakeScoringService) GetSnapshot(ctx context.Context, year int) ([]scoringservice.Standing, error) {
	f.record("GetSnapshot")
	if f.GetSnapshotFunc != nil {
		return f.GetSnapshotFunc(ctx, year)
	}
	return []scoringservice.Standing{}, nil
}

func (f *FakeScoringService) InvalidateYear(year int) {
	f.record("InvalidateYear")
	f.Invalidated = append(f.Invalidated, year)
}

var _ scoringservice.Service = (*FakeScoringService)(nil)
