package usermigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the users schema. It runs first; timers reference users.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
