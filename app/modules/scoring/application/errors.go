package scoringservice

import (
	"errors"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
)

var ErrUserNotFound = errors.New("user not found")

func isDomainFailure(err error) bool {
	return errors.Is(err, timerdomain.ErrInvalidArgument) || errors.Is(err, ErrUserNotFound)
}
