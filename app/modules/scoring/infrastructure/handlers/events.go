package scoringhandlers

import (
	"log/slog"

	"github.com/Black-And-White-Club/advent-board/app/events"
	scoringservice "github.com/Black-And-White-Club/advent-board/app/modules/scoring/application"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventHandlers reacts to timer lifecycle events.
type EventHandlers struct {
	service scoringservice.Service
	logger  *slog.Logger
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(service scoringservice.Service, logger *slog.Logger) *EventHandlers {
	return &EventHandlers{service: service, logger: logger}
}

// HandleTimerCompleted drops the cached leaderboard of the completed timer's
// year. Undecodable payloads are acked and logged; redelivery cannot fix them.
func (h *EventHandlers) HandleTimerCompleted(msg *message.Message) error {
	payload, err := events.DecodeTimer(msg)
	if err != nil {
		h.logger.WarnContext(msg.Context(), "Dropping malformed timer event",
			slog.String("message_id", msg.UUID),
			slog.Any("error", err),
		)
		return nil
	}

	h.service.InvalidateYear(payload.Year)
	h.logger.DebugContext(msg.Context(), "Invalidated year leaderboard",
		slog.String("message_id", msg.UUID),
		slog.String("user_id", payload.UserID),
		slog.Int("year", payload.Year),
	)
	return nil
}
