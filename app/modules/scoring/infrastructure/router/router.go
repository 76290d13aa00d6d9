package scoringrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/advent-board/app/events"
	scoringhandlers "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/handlers"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const invalidateHandlerName = "scoring." + events.TimerCompletedV1

// ScoringRouter binds scoring event handlers to a watermill router.
type ScoringRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	registry   *prometheus.Registry
}

// NewScoringRouter creates a new ScoringRouter. registry may be nil to skip
// router metrics.
func NewScoringRouter(logger *slog.Logger, router *message.Router, subscriber message.Subscriber, registry *prometheus.Registry) *ScoringRouter {
	return &ScoringRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		registry:   registry,
	}
}

// Configure sets up the middlewares and registers the scoring event handlers.
func (r *ScoringRouter) Configure(ctx context.Context, handlers *scoringhandlers.EventHandlers) error {
	if r.registry != nil {
		r.logger.InfoContext(ctx, "Adding Prometheus router metrics middleware for Scoring")
		builder := metrics.NewPrometheusMetricsBuilder(r.registry, "advent_board", "scoring")
		builder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	return r.RegisterHandlers(ctx, handlers)
}

// RegisterHandlers binds topics to their handlers.
func (r *ScoringRouter) RegisterHandlers(ctx context.Context, handlers *scoringhandlers.EventHandlers) error {
	r.logger.InfoContext(ctx, "Registering Scoring Event Handlers")

	r.Router.AddNoPublisherHandler(
		invalidateHandlerName,
		events.TimerCompletedV1,
		r.subscriber,
		handlers.HandleTimerCompleted,
	)
	return nil
}

// Close stops the router and cleans up resources.
func (r *ScoringRouter) Close() error {
	return r.Router.Close()
}
