package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/advent-board/app/modules/scoring"
	"github.com/Black-And-White-Club/advent-board/app/modules/timer"
	"github.com/Black-And-White-Club/advent-board/app/observability"
)

// Module is the lifecycle every module implements.
type Module interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
	Close() error
}

// Modules holds the application modules.
type Modules struct {
	TimerModule   *timer.Module
	ScoringModule *scoring.Module
}

func initializeModules(ctx context.Context, app *App) (*Modules, error) {
	db := app.DB.GetDB()

	timerModule, err := timer.NewTimerModule(ctx, app.Logger, app.Tracer, app.Metrics, db, app.EventBus, app.HTTPRouter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize timer module: %w", err)
	}

	scoringModule, err := scoring.NewScoringModule(ctx, app.Config, scoring.Deps{
		Logger:     app.Logger,
		Tracer:     app.Tracer,
		Metrics:    app.Metrics,
		Registry:   app.Registry,
		DB:         db,
		Subscriber: app.EventBus,
		Router:     app.WatermillRouter,
		HTTPRouter: app.HTTPRouter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scoring module: %w", err)
	}

	return &Modules{TimerModule: timerModule, ScoringModule: scoringModule}, nil
}

func (m *Modules) all() []Module {
	var out []Module
	if m.TimerModule != nil {
		out = append(out, m.TimerModule)
	}
	if m.ScoringModule != nil {
		out = append(out, m.ScoringModule)
	}
	return out
}

// Run starts every module goroutine and registers it on wg.
func (m *Modules) Run(ctx context.Context, wg *sync.WaitGroup) {
	for _, mod := range m.all() {
		wg.Add(1)
		go mod.Run(ctx, wg)
	}
}

// Close stops every module, logging failures.
func (m *Modules) Close(logger *slog.Logger) {
	for _, mod := range m.all() {
		if err := mod.Close(); err != nil {
			logger.Error("Failed to close module", slog.String("module", fmt.Sprintf("%T", mod)), observability.ErrorAttr(err))
		}
	}
}
