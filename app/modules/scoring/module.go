package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/observability"
	scoringservice "github.com/Black-And-White-Club/advent-board/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/advent-board/app/modules/scoring/domain"
	scoringhandlers "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/handlers"
	scoringqueue "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/queue"
	scoringdb "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/repositories"
	scoringrouter "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/router"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/advent-board/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the scoring module.
type Module struct {
	ScoringService scoringservice.Service
	ScoringRouter  *scoringrouter.ScoringRouter
	Queue          scoringqueue.QueueService
	logger         *slog.Logger
	cancelFunc     context.CancelFunc
}

// Deps groups the shared infrastructure the module is built on.
type Deps struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  observability.Metrics
	Registry *prometheus.Registry
	DB       *bun.DB
	// Subscriber feeds timer events into Router. Both may be nil to skip
	// event-driven cache invalidation.
	Subscriber message.Subscriber
	Router     *message.Router
	HTTPRouter chi.Router
}

// NewScoringModule creates the scoring service, mounts its HTTP routes,
// registers its event handlers and, when snapshot years are configured,
// creates the River snapshot queue.
func NewScoringModule(ctx context.Context, cfg *config.Config, deps Deps) (*Module, error) {
	logger := deps.Logger
	logger.InfoContext(ctx, "scoring.NewScoringModule initializing")

	base, err := scoringdomain.ParsePointsBase(cfg.Scoring.PointsBase)
	if err != nil {
		return nil, err
	}

	// 1. Initialize Repositories
	timers := timerdb.NewRepository(deps.DB)
	users := userdb.NewRepository(deps.DB)
	snapshots := scoringdb.NewRepository(deps.DB)

	// 2. Initialize Service
	opts := []scoringservice.Option{scoringservice.WithPointsBase(base)}
	if cfg.Scoring.CacheEnabled {
		opts = append(opts, scoringservice.WithCache(scoringservice.NewYearCache()))
	}
	service := scoringservice.NewScoringService(timers, users, snapshots, logger, deps.Metrics, deps.Tracer, deps.DB, opts...)

	// 3. Register HTTP routes
	if deps.HTTPRouter != nil {
		scoringhandlers.NewScoringHandlers(service, logger).Mount(deps.HTTPRouter)
	}

	module := &Module{
		ScoringService: service,
		logger:         logger,
	}

	// 4. Register event handlers
	if deps.Router != nil && deps.Subscriber != nil {
		module.ScoringRouter = scoringrouter.NewScoringRouter(logger, deps.Router, deps.Subscriber, deps.Registry)
		if err := module.ScoringRouter.Configure(ctx, scoringhandlers.NewEventHandlers(service, logger)); err != nil {
			return nil, fmt.Errorf("failed to configure scoring router: %w", err)
		}
	}

	// 5. Snapshot queue
	if len(cfg.Scoring.SnapshotYears) > 0 {
		queue, err := scoringqueue.NewService(ctx, cfg.Postgres.DSN, service, scoringqueue.Config{
			Years:    cfg.Scoring.SnapshotYears,
			Interval: cfg.Scoring.SnapshotInterval,
		}, logger, deps.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create scoring queue: %w", err)
		}
		module.Queue = queue
	}

	return module, nil
}

// Run starts the snapshot queue, if any, and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting scoring module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start scoring queue", observability.ErrorAttr(err))
		}
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Scoring module goroutine stopped")
}

// Close stops the queue and shuts down the scoring module.
func (m *Module) Close() error {
	m.logger.Info("Stopping scoring module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.Queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.Queue.Stop(ctx); err != nil {
			return err
		}
	}
	return nil
}
