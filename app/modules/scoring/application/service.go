package scoringservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/observability"
	scoringdomain "github.com/Black-And-White-Club/advent-board/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/repositories"
	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "ScoringService"
	cacheName   = "year_leaderboard"
)

// ScoringService implements the Service interface.
type ScoringService struct {
	timers    timerdb.Repository
	users     userdb.Repository
	snapshots scoringdb.Repository
	cache     *YearCache
	base      scoringdomain.PointsBase
	logger    *slog.Logger
	metrics   observability.Metrics
	tracer    trace.Tracer
	db        *bun.DB
	now       func() time.Time
}

// Option customizes a ScoringService.
type Option func(*ScoringService)

// WithCache enables memoization of year leaderboards.
func WithCache(c *YearCache) Option {
	return func(s *ScoringService) { s.cache = c }
}

// WithPointsBase selects N for points = N - rank.
func WithPointsBase(b scoringdomain.PointsBase) Option {
	return func(s *ScoringService) { s.base = b }
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *ScoringService) { s.now = now }
}

// NewScoringService creates a new ScoringService.
func NewScoringService(
	timers timerdb.Repository,
	users userdb.Repository,
	snapshots scoringdb.Repository,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *ScoringService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	s := &ScoringService{
		timers:    timers,
		users:     users,
		snapshots: snapshots,
		base:      scoringdomain.PointsBaseFinishers,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DayLeaderboard lists completed stars of one day.
func (s *ScoringService) DayLeaderboard(ctx context.Context, year, day int, star *int) ([]DayEntry, error) {
	identifier := fmt.Sprintf("%d/%02d", year, day)
	if star != nil {
		identifier += "/" + strconv.Itoa(*star)
	}
	return withTelemetry(s, ctx, "DayLeaderboard", identifier, func(ctx context.Context) ([]DayEntry, error) {
		if err := timerdomain.ValidateDay(year, day); err != nil {
			return nil, err
		}

		var entries []scoringdomain.RankedEntry
		if star != nil {
			if err := timerdomain.ValidateStar(*star); err != nil {
				return nil, err
			}
			rows, err := s.timers.FindCompleted(ctx, nil, year, day, *star)
			if err != nil {
				return nil, fmt.Errorf("failed to load completed timers: %w", err)
			}
			entries = scoringdomain.RankStar(timerdb.ToDomainSlice(rows))
		} else {
			rows, err := s.timers.FindCompletedForDay(ctx, nil, year, day)
			if err != nil {
				return nil, fmt.Errorf("failed to load completed timers: %w", err)
			}
			entries = scoringdomain.Annotate(timerdb.ToDomainSlice(rows))
		}

		profiles, err := s.profiles(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]DayEntry, len(entries))
		for i, e := range entries {
			out[i] = DayEntry{RankedEntry: e, Name: e.UserID}
			if u, ok := profiles[e.UserID]; ok {
				out[i].Name = u.DisplayName()
				out[i].Image = u.Image
			}
		}
		return out, nil
	})
}

// YearLeaderboard scores every day/star board for the year.
func (s *ScoringService) YearLeaderboard(ctx context.Context, year int) ([]Standing, error) {
	return withTelemetry(s, ctx, "YearLeaderboard", strconv.Itoa(year), func(ctx context.Context) ([]Standing, error) {
		if err := timerdomain.ValidateYear(year); err != nil {
			return nil, err
		}
		return s.yearLeaderboard(ctx, year)
	})
}

// yearLeaderboard serves from the cache when the stored version still
// matches the database.
func (s *ScoringService) yearLeaderboard(ctx context.Context, year int) ([]Standing, error) {
	if s.cache == nil {
		standings, _, err := s.computeYear(ctx, year)
		return standings, err
	}

	version, err := s.snapshots.YearVersion(ctx, nil, year)
	if err != nil {
		return nil, fmt.Errorf("failed to read year version: %w", err)
	}
	cached, gen, ok := s.cache.Get(year, version)
	if ok {
		s.metrics.RecordCacheHit(ctx, cacheName)
		return cached, nil
	}
	s.metrics.RecordCacheMiss(ctx, cacheName)

	standings, _, err := s.computeYear(ctx, year)
	if err != nil {
		return nil, err
	}
	s.cache.Put(year, gen, version, standings)
	return standings, nil
}

// computeYear runs every board through the engine. Reads are not
// transactional; skew between days is acceptable.
func (s *ScoringService) computeYear(ctx context.Context, year int) ([]Standing, []scoringdomain.Board, error) {
	users, err := s.users.ListAll(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list users: %w", err)
	}

	boards, err := s.yearBoards(ctx, year)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, len(users))
	profiles := make(map[string]*userdb.User, len(users))
	for i := range users {
		ids[i] = users[i].ID
		profiles[users[i].ID] = &users[i]
	}

	summaries := scoringdomain.SortStandings(scoringdomain.ScoreYear(ids, boards, s.base))
	computedAt := s.now().UTC()
	out := make([]Standing, len(summaries))
	for i, sum := range summaries {
		u := profiles[sum.UserID]
		out[i] = Standing{
			Position:     i + 1,
			ScoreSummary: sum,
			Name:         u.DisplayName(),
			Image:        u.Image,
			ComputedAt:   computedAt,
		}
	}
	return out, boards, nil
}

// yearBoards loads each day once and splits it by star. The repository
// order is kept, so ranking stays deterministic.
func (s *ScoringService) yearBoards(ctx context.Context, year int) ([]scoringdomain.Board, error) {
	boards := make([]scoringdomain.Board, 0, timerdomain.DaysPerYear*timerdomain.StarsPerDay)
	for day := 1; day <= timerdomain.DaysPerYear; day++ {
		rows, err := s.timers.FindCompletedForDay(ctx, nil, year, day)
		if err != nil {
			return nil, fmt.Errorf("failed to load day %d: %w", day, err)
		}
		byStar := make([][]timerdomain.Timer, timerdomain.StarsPerDay+1)
		for _, row := range rows {
			if row.Star < 1 || row.Star > timerdomain.StarsPerDay {
				continue
			}
			byStar[row.Star] = append(byStar[row.Star], row.ToDomain())
		}
		for star := 1; star <= timerdomain.StarsPerDay; star++ {
			boards = append(boards, scoringdomain.Board{
				Day:     day,
				Star:    star,
				Entries: scoringdomain.RankStar(byStar[star]),
			})
		}
	}
	return boards, nil
}

func (s *ScoringService) profiles(ctx context.Context) (map[string]*userdb.User, error) {
	users, err := s.users.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make(map[string]*userdb.User, len(users))
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// UserYearDetail returns a user and their completed timers for a year.
func (s *ScoringService) UserYearDetail(ctx context.Context, userID string, year int) (*UserDetail, error) {
	return withTelemetry(s, ctx, "UserYearDetail", userID+"/"+strconv.Itoa(year), func(ctx context.Context) (*UserDetail, error) {
		if err := timerdomain.ValidateYear(year); err != nil {
			return nil, err
		}
		u, err := s.users.GetByID(ctx, nil, userID)
		if err != nil {
			if errors.Is(err, userdb.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		rows, err := s.timers.FindCompletedForUser(ctx, nil, userID, year)
		if err != nil {
			return nil, fmt.Errorf("failed to load user timers: %w", err)
		}
		timers := make([]timerdomain.Timer, 0, len(rows))
		for _, row := range rows {
			if row.StopTime == nil {
				continue
			}
			timers = append(timers, row.ToDomain())
		}
		return &UserDetail{
			UserID: u.ID,
			Name:   u.DisplayName(),
			Image:  u.Image,
			Timers: timers,
		}, nil
	})
}

// SnapshotYear recomputes the leaderboard, bypassing the cache, and replaces
// the persisted rows in one transaction.
func (s *ScoringService) SnapshotYear(ctx context.Context, year int) ([]Standing, error) {
	return withTelemetry(s, ctx, "SnapshotYear", strconv.Itoa(year), func(ctx context.Context) ([]Standing, error) {
		if err := timerdomain.ValidateYear(year); err != nil {
			return nil, err
		}
		standings, _, err := s.computeYear(ctx, year)
		if err != nil {
			return nil, err
		}
		rows := make([]scoringdb.StandingSnapshot, len(standings))
		for i, st := range standings {
			rows[i] = scoringdb.StandingSnapshot{
				Year:       year,
				UserID:     st.UserID,
				Position:   st.Position,
				Score:      st.Score,
				Stars:      st.Stars,
				Golds:      st.Golds,
				Silvers:    st.Silvers,
				Bronzes:    st.Bronzes,
				ComputedAt: st.ComputedAt,
			}
		}
		_, err = runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (struct{}, error) {
			return struct{}{}, s.snapshots.ReplaceYear(ctx, db, year, rows)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store snapshot: %w", err)
		}
		return standings, nil
	})
}

// GetSnapshot reads the persisted standings, decorated with current profiles.
func (s *ScoringService) GetSnapshot(ctx context.Context, year int) ([]Standing, error) {
	return withTelemetry(s, ctx, "GetSnapshot", strconv.Itoa(year), func(ctx context.Context) ([]Standing, error) {
		if err := timerdomain.ValidateYear(year); err != nil {
			return nil, err
		}
		rows, err := s.snapshots.ListYear(ctx, nil, year)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		profiles, err := s.profiles(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Standing, len(rows))
		for i, row := range rows {
			out[i] = Standing{
				Position: row.Position,
				ScoreSummary: scoringdomain.ScoreSummary{
					UserID:  row.UserID,
					Score:   row.Score,
					Stars:   row.Stars,
					Golds:   row.Golds,
					Silvers: row.Silvers,
					Bronzes: row.Bronzes,
				},
				Name:       row.UserID,
				ComputedAt: row.ComputedAt,
			}
			if u, ok := profiles[row.UserID]; ok {
				out[i].Name = u.DisplayName()
				out[i].Image = u.Image
			}
		}
		return out, nil
	})
}

// InvalidateYear drops any memoized leaderboard for year.
func (s *ScoringService) InvalidateYear(year int) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(year)
	s.logger.Debug("Year leaderboard cache invalidated", slog.Int("year", year))
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *ScoringService,
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

	s.logger.DebugContext(ctx, "Operation completed successfully",
		observability.RequestIDAttr(ctx),
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[T any](
	s *ScoringService,
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
