package scoringservice

import (
	"context"
	"io"
	"time"

	scoringdomain "github.com/Black-And-White-Club/advent-board/app/modules/scoring/domain"
	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
)

// Service exposes leaderboards and their derived artifacts.
type Service interface {
	// DayLeaderboard lists completed stars of one day. With a star it is
	// ranked fastest first; without one entries are annotated only.
	DayLeaderboard(ctx context.Context, year, day int, star *int) ([]DayEntry, error)

	// YearLeaderboard scores every day/star board and returns one standing per user.
	YearLeaderboard(ctx context.Context, year int) ([]Standing, error)

	// UserYearDetail returns a user and their completed timers for a year.
	UserYearDetail(ctx context.Context, userID string, year int) (*UserDetail, error)

	// YearChart writes a PNG bar chart of the top scores.
	YearChart(ctx context.Context, year int, w io.Writer) error

	// ExportYear writes an XLSX workbook of the standings and every ranked star.
	ExportYear(ctx context.Context, year int, w io.Writer) error

	// SnapshotYear recomputes and persists the year's standings.
	SnapshotYear(ctx context.Context, year int) ([]Standing, error)

	// GetSnapshot reads the persisted standings.
	GetSnapshot(ctx context.Context, year int) ([]Standing, error)

	// InvalidateYear drops any memoized leaderboard for year.
	InvalidateYear(year int)
}

// DayEntry is a ranked or annotated star decorated with the user's profile.
type DayEntry struct {
	scoringdomain.RankedEntry
	Name  string
	Image *string
}

// Standing is a ScoreSummary with its 1-based position and the user's profile.
type Standing struct {
	Position int
	scoringdomain.ScoreSummary
	Name       string
	Image      *string
	ComputedAt time.Time
}

// UserDetail is a user's personal history for one year.
type UserDetail struct {
	UserID string
	Name   string
	Image  *string
	Timers []timerdomain.Timer
}
