package timermigrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()

func init() {
	// Derive migration IDs from file names so each MustRegister call in a
	// separate file gets a stable name.
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
