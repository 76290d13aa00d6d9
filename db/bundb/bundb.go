// db/bundb/bundb.go
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	scoringdb "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/repositories"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/advent-board/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DBService bundles the repositories over one connection pool.
type DBService struct {
	UserDB     userdb.Repository
	TimerDB    timerdb.Repository
	SnapshotDB scoringdb.Repository
	db         *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Close closes the connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService connects to Postgres and builds the repositories.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := BunDB(sqldb)
	logger.InfoContext(ctx, "Database connection established")
	return NewDBService(db), nil
}

// NewDBService wraps an existing bun.DB.
func NewDBService(db *bun.DB) *DBService {
	db.RegisterModel(
		(*userdb.User)(nil),
		(*timerdb.Timer)(nil),
		(*scoringdb.StandingSnapshot)(nil),
	)
	return &DBService{
		UserDB:     userdb.NewRepository(db),
		TimerDB:    timerdb.NewRepository(db),
		SnapshotDB: scoringdb.NewRepository(db),
		db:         db,
	}
}

// BunDB returns a new bun.DB for given sql.DB connection pool.
func BunDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}

// Open returns a bun.DB over pgdriver without pinging.
func Open(dsn string) *bun.DB {
	return BunDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))))
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return sqldb, nil
}
