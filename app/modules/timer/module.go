package timer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/advent-board/app/observability"
	timerservice "github.com/Black-And-White-Club/advent-board/app/modules/timer/application"
	timerhandlers "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/handlers"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the timer module.
type Module struct {
	TimerService timerservice.Service
	Handlers     *timerhandlers.TimerHandlers
	logger       *slog.Logger
	cancelFunc   context.CancelFunc
}

// NewTimerModule creates and initializes a new timer module and mounts its
// HTTP routes when httpRouter is non-nil.
func NewTimerModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.Metrics,
	db *bun.DB,
	publisher timerservice.Publisher,
	httpRouter chi.Router,
) (*Module, error) {
	logger.InfoContext(ctx, "timer.NewTimerModule initializing")

	// 1. Initialize Repositories
	repo := timerdb.NewRepository(db)
	users := userdb.NewRepository(db)

	// 2. Initialize Service
	service := timerservice.NewTimerService(repo, users, publisher, logger, metrics, tracer, db)

	// 3. Initialize Handlers
	handlers := timerhandlers.NewTimerHandlers(service, timerservice.RealClock{}, logger)

	// 4. Register HTTP routes
	if httpRouter != nil {
		handlers.Mount(httpRouter)
	}

	return &Module{
		TimerService: service,
		Handlers:     handlers,
		logger:       logger,
	}, nil
}

// Run blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting timer module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Timer module goroutine stopped")
}

// Close shuts down the timer module.
func (m *Module) Close() error {
	m.logger.Info("Stopping timer module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
