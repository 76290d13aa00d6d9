package scoringqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/riverqueue/river/rivertype"
)

const queueName = "scoring"

// QueueService schedules standings snapshots.
type QueueService interface {
	// EnqueueSnapshot inserts a one-off snapshot job for year.
	EnqueueSnapshot(ctx context.Context, year int) error
	// ListSnapshotJobs returns recent snapshot jobs (for debugging)
	ListSnapshotJobs(ctx context.Context, limit int) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService
var _ QueueService = (*Service)(nil)

// Service runs the snapshot worker and its periodic schedule on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.Metrics
}

// Config controls the periodic schedule.
type Config struct {
	Years    []int
	Interval time.Duration
}

// NewService creates a River client over its own pgx pool. River requires
// pgx, not database/sql.
func NewService(ctx context.Context, dsn string, snapshotter Snapshotter, cfg Config, logger *slog.Logger, metrics observability.Metrics) (*Service, error) {
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	ctxLogger := logger.With(
		slog.String("operation", "new_scoring_queue_service"),
		slog.String("component", "river_queue"),
	)
	ctxLogger.InfoContext(ctx, "Initializing Scoring queue service")

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewSnapshotWorker(snapshotter, ctxLogger, metrics))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 2},
			queueName:          {MaxWorkers: 2},
		},
		Workers:      workers,
		PeriodicJobs: PeriodicJobs(cfg),
		Logger:       ctxLogger,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	ctxLogger.InfoContext(ctx, "Scoring queue service initialized",
		slog.Any("years", cfg.Years),
		slog.Duration("interval", cfg.Interval),
	)
	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: metrics}, nil
}

// PeriodicJobs schedules one snapshot per configured year every Interval,
// starting immediately.
func PeriodicJobs(cfg Config) []*river.PeriodicJob {
	if cfg.Interval <= 0 {
		return nil
	}
	jobs := make([]*river.PeriodicJob, 0, len(cfg.Years))
	for _, year := range cfg.Years {
		jobs = append(jobs, river.NewPeriodicJob(
			river.PeriodicInterval(cfg.Interval),
			func() (river.JobArgs, *river.InsertOpts) {
				return SnapshotJob{Year: year}, insertOpts()
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		))
	}
	return jobs
}

// insertOpts dedupes pending snapshots of the same year.
func insertOpts() *river.InsertOpts {
	return &river.InsertOpts{
		Queue:      queueName,
		UniqueOpts: river.UniqueOpts{ByArgs: true},
	}
}

// Migrate applies River's schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

// Start applies River migrations and starts the client.
func (s *Service) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting Scoring queue service")
	if err := Migrate(ctx, s.pool); err != nil {
		return err
	}
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop stops the client and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping Scoring queue service")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	return nil
}

// EnqueueSnapshot inserts a one-off snapshot job for year.
func (s *Service) EnqueueSnapshot(ctx context.Context, year int) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_snapshot", workerService)
	defer func() {
		s.metrics.RecordOperationDuration(ctx, "enqueue_snapshot", workerService, time.Since(start))
	}()

	res, err := s.client.Insert(ctx, SnapshotJob{Year: year}, insertOpts())
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_snapshot", workerService)
		return fmt.Errorf("failed to enqueue snapshot: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "enqueue_snapshot", workerService)
	s.logger.InfoContext(ctx, "Snapshot job enqueued",
		slog.Int("year", year),
		slog.Int64("job_id", res.Job.ID),
		slog.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// ListSnapshotJobs returns the most recent snapshot jobs.
func (s *Service) ListSnapshotJobs(ctx context.Context, limit int) ([]JobInfo, error) {
	params := river.NewJobListParams().
		Kinds(SnapshotJob{}.Kind()).
		OrderBy(river.JobListOrderByID, river.SortOrderDesc).
		First(limit)

	res, err := s.client.JobList(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot jobs: %w", err)
	}

	out := make([]JobInfo, 0, len(res.Jobs))
	for _, job := range res.Jobs {
		out = append(out, toJobInfo(job))
	}
	return out, nil
}

func toJobInfo(job *rivertype.JobRow) JobInfo {
	info := JobInfo{
		ID:          job.ID,
		Kind:        job.Kind,
		State:       string(job.State),
		ScheduledAt: job.ScheduledAt.Format(time.RFC3339),
		Attempt:     job.Attempt,
		MaxAttempts: job.MaxAttempts,
	}
	var args SnapshotJob
	if err := decodeArgs(job.EncodedArgs, &args); err == nil {
		info.Year = args.Year
	}
	return info
}

// HealthCheck pings the pool River runs on.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}

// GetClient returns the underlying River client for advanced operations
func (s *Service) GetClient() *river.Client[pgx.Tx] {
	return s.client
}
