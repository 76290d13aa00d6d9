// app/start.go

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Black-And-White-Club/advent-board/app/observability"
)

// Run starts the modules, the Watermill router and the HTTP servers, and
// blocks until ctx is cancelled or a server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	app.Modules.Run(ctx, &wg)

	errCh := make(chan error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.WatermillRouter.Run(ctx); err != nil {
			errCh <- fmt.Errorf("watermill router: %w", err)
		}
	}()

	if app.MetricsServer != nil {
		go func() {
			app.Logger.InfoContext(ctx, "Metrics server listening", slog.String("addr", app.MetricsServer.Addr))
			if err := app.MetricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.HTTPServer.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		app.Logger.ErrorContext(ctx, "Component failed, shutting down", observability.ErrorAttr(runErr))
	}

	cancel()
	if app.MetricsServer != nil {
		_ = app.MetricsServer.Close()
	}
	wg.Wait()
	return runErr
}
