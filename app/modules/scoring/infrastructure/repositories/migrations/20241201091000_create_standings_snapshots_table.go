package scoringmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating standings_snapshots table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS standings_snapshots (
				year INTEGER NOT NULL,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				score INTEGER NOT NULL DEFAULT 0,
				stars INTEGER NOT NULL DEFAULT 0,
				golds INTEGER NOT NULL DEFAULT 0,
				silvers INTEGER NOT NULL DEFAULT 0,
				bronzes INTEGER NOT NULL DEFAULT 0,
				computed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (year, user_id)
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create standings_snapshots table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping standings_snapshots table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS standings_snapshots;`); err != nil {
			return fmt.Errorf("failed to drop standings_snapshots table: %w", err)
		}
		return nil
	})
}
