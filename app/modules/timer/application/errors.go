package timerservice

import (
	"errors"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrTimerNotFound         = errors.New("timer not started")
	ErrTimerAlreadyCompleted = errors.New("timer already completed")
	ErrStarLocked            = errors.New("star 2 is locked until star 1 is completed")
	ErrInvalidStopTime       = errors.New("stop time before init time")
)

// isDomainFailure reports whether err is an expected business outcome rather
// than an infrastructure failure.
func isDomainFailure(err error) bool {
	for _, target := range []error{
		timerdomain.ErrInvalidArgument,
		ErrUserNotFound,
		ErrTimerNotFound,
		ErrTimerAlreadyCompleted,
		ErrStarLocked,
		ErrInvalidStopTime,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
