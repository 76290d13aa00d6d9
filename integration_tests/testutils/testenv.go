package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/advent-board/db/bundb"
	"github.com/Black-And-White-Club/advent-board/integration_tests/containers"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	scoringqueue "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/queue"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// TestEnvironment holds a migrated Postgres shared by the tests of a package.
type TestEnvironment struct {
	Ctx         context.Context
	PgContainer *postgres.PostgresContainer
	DB          *bun.DB
	DSN         string
	Logger      *slog.Logger
}

var (
	globalEnv     *TestEnvironment
	globalEnvErr  error
	globalEnvOnce sync.Once
)

// GetOrCreateTestEnv returns the package-wide environment, starting it on
// first use. It skips the test under -short or without a Docker provider.
func GetOrCreateTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	globalEnvOnce.Do(func() {
		globalEnv, globalEnvErr = newTestEnvironment(context.Background())
	})
	if globalEnvErr != nil {
		t.Fatalf("failed to create test environment: %v", globalEnvErr)
	}
	return globalEnv
}

func newTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	db := bundb.BunDB(sqlDB)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := runMigrations(ctx, db, dsn, logger); err != nil {
		db.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestEnvironment{Ctx: ctx, PgContainer: pgContainer, DB: db, DSN: dsn, Logger: logger}, nil
}

// runMigrations applies module migrations, then River's schema.
func runMigrations(ctx context.Context, db *bun.DB, dsn string, logger *slog.Logger) error {
	if err := bundb.Migrate(ctx, db, logger); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()
	return scoringqueue.Migrate(ctx, pool)
}

// Shutdown terminates the shared environment. Call it from TestMain.
func Shutdown(ctx context.Context) {
	if globalEnv == nil {
		return
	}
	_ = globalEnv.DB.Close()
	_ = globalEnv.PgContainer.Terminate(ctx)
	globalEnv = nil
}

// TruncateTables empties the given tables and their dependents.
func TruncateTables(ctx context.Context, db *bun.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	if err != nil {
		return fmt.Errorf("failed to truncate %v: %w", tables, err)
	}
	return nil
}

// CleanDatabase empties every application table and pending River jobs.
func (env *TestEnvironment) CleanDatabase(t *testing.T) {
	t.Helper()
	if err := TruncateTables(env.Ctx, env.DB, "standings_snapshots", "timers", "users"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.DB.ExecContext(env.Ctx, "DELETE FROM river_job"); err != nil {
		t.Fatalf("failed to cleanup river jobs: %v", err)
	}
}

// WaitFor polls check until it succeeds or timeout elapses.
func WaitFor(timeout, interval time.Duration, check func() error) error {
	deadline := time.Now().Add(timeout)
	for {
		err := check()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("condition not met after %s: %w", timeout, err)
		}
		time.Sleep(interval)
	}
}
