package timermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating timers table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS timers (
					id BIGSERIAL PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					year INTEGER NOT NULL,
					day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 25),
					star INTEGER NOT NULL CHECK (star IN (1, 2)),
					init_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					stop_time TIMESTAMPTZ,
					CONSTRAINT timers_user_day_year_star_key UNIQUE (user_id, year, day, star),
					CONSTRAINT timers_stop_after_init CHECK (stop_time IS NULL OR stop_time >= init_time)
				);
			`); err != nil {
				return fmt.Errorf("failed to create timers table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_timers_completed_by_star
					ON timers (year, day, star, stop_time)
					WHERE stop_time IS NOT NULL;
			`); err != nil {
				return fmt.Errorf("failed to create timers index: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping timers table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS timers;`); err != nil {
			return fmt.Errorf("failed to drop timers table: %w", err)
		}
		return nil
	})
}
