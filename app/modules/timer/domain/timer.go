package timerdomain

import (
	"errors"
	"fmt"
	"time"
)

const (
	// FirstYear is the first edition of the competition.
	FirstYear = 2015
	// DaysPerYear is the number of puzzle days in an edition.
	DaysPerYear = 25
	// StarsPerDay is the number of sequential sub-puzzles per day.
	StarsPerDay = 2
)

// ErrInvalidArgument wraps every out-of-range year, day, or star.
var ErrInvalidArgument = errors.New("invalid argument")

// State is the lifecycle state of one user's timer for one day/star.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "not_started"
	}
}

// Key is the natural key of a timer.
type Key struct {
	UserID string
	Year   int
	Day    int
	Star   int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%02d/%d", k.UserID, k.Year, k.Day, k.Star)
}

// Validate checks the key ranges.
func (k Key) Validate() error {
	if k.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	if err := ValidateDay(k.Year, k.Day); err != nil {
		return err
	}
	return ValidateStar(k.Star)
}

// ValidateYear rejects years before the first edition.
func ValidateYear(year int) error {
	if year < FirstYear {
		return fmt.Errorf("%w: year %d before %d", ErrInvalidArgument, year, FirstYear)
	}
	return nil
}

// ValidateDay rejects days outside 1..25 and invalid years.
func ValidateDay(year, day int) error {
	if err := ValidateYear(year); err != nil {
		return err
	}
	if day < 1 || day > DaysPerYear {
		return fmt.Errorf("%w: day %d outside 1..%d", ErrInvalidArgument, day, DaysPerYear)
	}
	return nil
}

// ValidateStar rejects stars other than 1 and 2.
func ValidateStar(star int) error {
	if star < 1 || star > StarsPerDay {
		return fmt.Errorf("%w: star %d outside 1..%d", ErrInvalidArgument, star, StarsPerDay)
	}
	return nil
}

// Timer is one user's attempt window at one day/star.
type Timer struct {
	Key
	InitTime time.Time
	StopTime *time.Time
}

// State derives the lifecycle state. A nil timer has not been started.
func (t *Timer) State() State {
	switch {
	case t == nil:
		return StateNotStarted
	case t.StopTime == nil:
		return StateInProgress
	default:
		return StateCompleted
	}
}

// Duration returns stop minus init; ok is false while the timer is in progress.
func (t *Timer) Duration() (time.Duration, bool) {
	if t.State() != StateCompleted {
		return 0, false
	}
	return t.StopTime.Sub(t.InitTime), true
}
