package scoringqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/observability"
	scoringservice "github.com/Black-And-White-Club/advent-board/app/modules/scoring/application"
	"github.com/riverqueue/river"
)

const workerService = "river"

// Snapshotter is the slice of the scoring service the worker needs.
type Snapshotter interface {
	SnapshotYear(ctx context.Context, year int) ([]scoringservice.Standing, error)
}

// SnapshotWorker runs SnapshotJob.
type SnapshotWorker struct {
	river.WorkerDefaults[SnapshotJob]
	snapshotter Snapshotter
	logger      *slog.Logger
	metrics     observability.Metrics
}

// NewSnapshotWorker creates a new SnapshotWorker.
func NewSnapshotWorker(snapshotter Snapshotter, logger *slog.Logger, metrics observability.Metrics) *SnapshotWorker {
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &SnapshotWorker{snapshotter: snapshotter, logger: logger, metrics: metrics}
}

// Timeout bounds one snapshot; a year is at most 50 boards.
func (w *SnapshotWorker) Timeout(*river.Job[SnapshotJob]) time.Duration {
	return 2 * time.Minute
}

// Work recomputes the year. Errors are returned so River retries with backoff.
func (w *SnapshotWorker) Work(ctx context.Context, job *river.Job[SnapshotJob]) error {
	start := time.Now()
	w.metrics.RecordOperationAttempt(ctx, "snapshot_job", workerService)
	defer func() {
		w.metrics.RecordOperationDuration(ctx, "snapshot_job", workerService, time.Since(start))
	}()

	logger := w.logger.With(
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
		slog.Int("year", job.Args.Year),
	)

	standings, err := w.snapshotter.SnapshotYear(ctx, job.Args.Year)
	if err != nil {
		logger.ErrorContext(ctx, "Standings snapshot failed", observability.ErrorAttr(err))
		w.metrics.RecordOperationFailure(ctx, "snapshot_job", workerService)
		return fmt.Errorf("snapshot year %d: %w", job.Args.Year, err)
	}

	w.metrics.RecordOperationSuccess(ctx, "snapshot_job", workerService)
	logger.InfoContext(ctx, "Standings snapshot stored", slog.Int("users", len(standings)))
	return nil
}
