package timerservice

import (
	"context"
	"time"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Service defines the timer lifecycle operations.
type Service interface {
	// StartTimer records the first view of a star. Starting an existing timer
	// returns it unchanged.
	StartTimer(ctx context.Context, key timerdomain.Key, at time.Time) (*timerdomain.Timer, error)

	// CompleteTimer stops an in-progress timer. It never mutates a completed one.
	CompleteTimer(ctx context.Context, key timerdomain.Key, at time.Time) (*timerdomain.Timer, error)

	// ListForUserDay returns both stars' timers for one day, including in-progress ones.
	ListForUserDay(ctx context.Context, userID string, year, day int) ([]timerdomain.Timer, error)
}

// Publisher is the outbound side of the event bus.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
}
