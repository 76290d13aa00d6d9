package bundb

import (
	"context"
	"fmt"
	"log/slog"

	scoringmigrations "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/repositories/migrations"
	timermigrations "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories/migrations"
	usermigrations "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrations names one module's migration set.
type ModuleMigrations struct {
	Name       string
	Migrations *migrate.Migrations
}

// OrderedModules lists module migrations in foreign key order: timers
// reference users and snapshots reference users.
func OrderedModules() []ModuleMigrations {
	return []ModuleMigrations{
		{"user", usermigrations.Migrations},
		{"timer", timermigrations.Migrations},
		{"scoring", scoringmigrations.Migrations},
	}
}

// NamedMigrator pairs a module name with its migrator.
type NamedMigrator struct {
	Name     string
	Migrator *migrate.Migrator
}

// Migrators builds one migrator per module, in OrderedModules order. They
// share the bun_migrations table.
func Migrators(db *bun.DB) []NamedMigrator {
	mods := OrderedModules()
	out := make([]NamedMigrator, len(mods))
	for i, m := range mods {
		out[i] = NamedMigrator{Name: m.Name, Migrator: migrate.NewMigrator(db, m.Migrations)}
	}
	return out
}

// Migrate initializes the migration tables and applies every pending module
// migration in order.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	migrators := Migrators(db)
	if err := migrators[0].Migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	for _, m := range migrators {
		group, err := m.Migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", m.Name, err)
		}
		if group.IsZero() {
			logger.DebugContext(ctx, "No migrations to run", slog.String("module", m.Name))
		} else {
			logger.InfoContext(ctx, "Ran migrations", slog.String("module", m.Name), slog.Int64("group", group.ID))
		}
	}
	return nil
}
