package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/eventbus"
	"github.com/Black-And-White-Club/advent-board/app/httpserver"
	"github.com/Black-And-White-Club/advent-board/app/observability"
	"github.com/Black-And-White-Club/advent-board/config"
	"github.com/Black-And-White-Club/advent-board/db/bundb"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

const routerCloseTimeout = 10 * time.Second

// App wires the shared infrastructure and the modules.
type App struct {
	Config          *config.Config
	Logger          *slog.Logger
	Tracer          trace.Tracer
	Metrics         observability.Metrics
	Registry        *prometheus.Registry
	DB              *bundb.DBService
	EventBus        eventbus.EventBus
	WatermillRouter *message.Router
	HTTPRouter      chi.Router
	HTTPServer      *httpserver.Server
	MetricsServer   *http.Server
	Modules         *Modules
}

// NewApp creates an App from cfg. Nothing runs until Run.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}
	if err := app.Initialize(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// Initialize builds logging, metrics, the database, the event bus, the
// routers and every module.
func (app *App) Initialize(ctx context.Context) error {
	cfg := app.Config

	app.Logger = observability.NewLogger(os.Stdout, cfg.Observability.Environment, cfg.Observability.LogLevel)
	app.Tracer = observability.Tracer("advent-board")
	app.Logger.InfoContext(ctx, "Initializing application", slog.String("environment", cfg.Observability.Environment))

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewPrometheusMetrics(app.Registry)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	app.Metrics = metrics

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, app.Logger)
	if err != nil {
		return err
	}
	app.DB = dbService

	if err := bundb.Migrate(ctx, dbService.GetDB(), app.Logger); err != nil {
		return err
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = bus

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: routerCloseTimeout}, watermill.NewSlogLogger(app.Logger))
	if err != nil {
		return fmt.Errorf("failed to create Watermill router: %w", err)
	}
	app.WatermillRouter = router

	app.HTTPRouter = httpserver.NewRouter(cfg.HTTP, app.Logger)

	modules, err := initializeModules(ctx, app)
	if err != nil {
		return err
	}
	app.Modules = modules

	app.HTTPServer = httpserver.NewServer(cfg.HTTP.Addr, app.HTTPRouter, app.Logger)
	if addr := cfg.Observability.MetricsAddress; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{Registry: app.Registry}))
		app.MetricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	app.Logger.InfoContext(ctx, "Application initialized")
	return nil
}

// Close releases everything Initialize created, in reverse order.
func (app *App) Close() {
	logger := app.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if app.Modules != nil {
		app.Modules.Close(logger)
	}
	if app.WatermillRouter != nil {
		if err := app.WatermillRouter.Close(); err != nil {
			logger.Error("Failed to close Watermill router", observability.ErrorAttr(err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.Error("Failed to close event bus", observability.ErrorAttr(err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			logger.Error("Failed to close database", observability.ErrorAttr(err))
		}
	}
	logger.Info("Application shut down")
}
