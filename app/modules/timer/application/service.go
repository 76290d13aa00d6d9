package timerservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/events"
	"github.com/Black-And-White-Club/advent-board/app/observability"
	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "TimerService"

// TimerService implements the Service interface.
type TimerService struct {
	repo      timerdb.Repository
	users     userdb.Repository
	publisher Publisher
	logger    *slog.Logger
	metrics   observability.Metrics
	tracer    trace.Tracer
	db        *bun.DB
}

// NewTimerService creates a new TimerService.
func NewTimerService(
	repo timerdb.Repository,
	users userdb.Repository,
	publisher Publisher,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *TimerService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &TimerService{
		repo:      repo,
		users:     users,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
	}
}

// startResult carries the stored timer and whether this call created it.
type startResult struct {
	timer   *timerdomain.Timer
	created bool
}

// StartTimer records the first view of a star.
func (s *TimerService) StartTimer(ctx context.Context, key timerdomain.Key, at time.Time) (*timerdomain.Timer, error) {
	res, err := withTelemetry(s, ctx, "StartTimer", key.String(), func(ctx context.Context) (startResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (startResult, error) {
			return s.startTimerLogic(ctx, db, key, at)
		})
	})
	if err != nil {
		return nil, err
	}
	if res.created {
		s.publish(ctx, events.TimerStartedV1, res.timer)
	}
	return res.timer, nil
}

func (s *TimerService) startTimerLogic(ctx context.Context, db bun.IDB, key timerdomain.Key, at time.Time) (startResult, error) {
	if err := key.Validate(); err != nil {
		return startResult{}, err
	}
	if _, err := s.users.GetByID(ctx, db, key.UserID); err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			return startResult{}, ErrUserNotFound
		}
		return startResult{}, fmt.Errorf("failed to get user: %w", err)
	}

	if key.Star > 1 {
		prev := key
		prev.Star = key.Star - 1
		row, err := s.repo.Get(ctx, db, prev)
		if err != nil && !errors.Is(err, timerdb.ErrNotFound) {
			return startResult{}, fmt.Errorf("failed to check previous star: %w", err)
		}
		if row == nil || row.StopTime == nil {
			return startResult{}, ErrStarLocked
		}
	}

	created, err := s.repo.Insert(ctx, db, key, at.UTC())
	if err != nil {
		return startResult{}, fmt.Errorf("failed to insert timer: %w", err)
	}

	row, err := s.repo.Get(ctx, db, key)
	if err != nil {
		return startResult{}, fmt.Errorf("failed to load timer: %w", err)
	}
	t := row.ToDomain()
	return startResult{timer: &t, created: created}, nil
}

// CompleteTimer stops an in-progress timer.
func (s *TimerService) CompleteTimer(ctx context.Context, key timerdomain.Key, at time.Time) (*timerdomain.Timer, error) {
	t, err := withTelemetry(s, ctx, "CompleteTimer", key.String(), func(ctx context.Context) (*timerdomain.Timer, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*timerdomain.Timer, error) {
			return s.completeTimerLogic(ctx, db, key, at)
		})
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TimerCompletedV1, t)
	return t, nil
}

func (s *TimerService) completeTimerLogic(ctx context.Context, db bun.IDB, key timerdomain.Key, at time.Time) (*timerdomain.Timer, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.Get(ctx, db, key)
	if err != nil {
		if errors.Is(err, timerdb.ErrNotFound) {
			return nil, ErrTimerNotFound
		}
		return nil, fmt.Errorf("failed to get timer: %w", err)
	}
	if row.StopTime != nil {
		return nil, ErrTimerAlreadyCompleted
	}
	stop := at.UTC()
	if stop.Before(row.InitTime) {
		return nil, ErrInvalidStopTime
	}

	if err := s.repo.Complete(ctx, db, key, stop); err != nil {
		if errors.Is(err, timerdb.ErrNoRowsAffected) {
			// Lost a race with a concurrent completion.
			return nil, ErrTimerAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to complete timer: %w", err)
	}

	t := row.ToDomain()
	t.StopTime = &stop
	return &t, nil
}

// ListForUserDay returns a user's timers for one day.
func (s *TimerService) ListForUserDay(ctx context.Context, userID string, year, day int) ([]timerdomain.Timer, error) {
	identifier := fmt.Sprintf("%s/%d/%02d", userID, year, day)
	return withTelemetry(s, ctx, "ListForUserDay", identifier, func(ctx context.Context) ([]timerdomain.Timer, error) {
		if err := timerdomain.ValidateDay(year, day); err != nil {
			return nil, err
		}
		rows, err := s.repo.ListForUserDay(ctx, nil, userID, year, day)
		if err != nil {
			return nil, fmt.Errorf("failed to list timers: %w", err)
		}
		return timerdb.ToDomainSlice(rows), nil
	})
}

// publish emits a lifecycle event after the transaction has committed. A
// failed publish is logged, the stored state stays authoritative.
func (s *TimerService) publish(ctx context.Context, topic string, t *timerdomain.Timer) {
	if s.publisher == nil || t == nil {
		return
	}
	msg, err := events.NewMessage(topic, events.TimerPayload{
		UserID:   t.UserID,
		Year:     t.Year,
		Day:      t.Day,
		Star:     t.Star,
		InitTime: t.InitTime,
		StopTime: t.StopTime,
	})
	if err == nil {
		err = s.publisher.Publish(topic, msg)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish timer event",
			observability.RequestIDAttr(ctx),
			slog.String("topic", topic),
			slog.String("timer", t.Key.String()),
			observability.ErrorAttr(err),
		)
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *TimerService,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.DebugContext(ctx, "Operation triggered", observability.RequestIDAttr(ctx), slog.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				observability.RequestIDAttr(ctx),
				slog.String("identifier", identifier),
				observability.ErrorAttr(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)

	if err != nil {
		if isDomainFailure(err) {
			s.logger.WarnContext(ctx, "Operation returned failure result",
				observability.RequestIDAttr(ctx),
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.String("reason", err.Error()),
			)
			s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
			return result, err
		}

		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			observability.RequestIDAttr(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			observability.ErrorAttr(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		observability.RequestIDAttr(ctx),
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[T any](
	s *TimerService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
