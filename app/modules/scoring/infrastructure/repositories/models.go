package scoringdb

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// StandingSnapshot is a persisted row of a computed year leaderboard.
type StandingSnapshot struct {
	bun.BaseModel `bun:"table:standings_snapshots,alias:ss"`

	Year       int       `bun:"year,pk" json:"year"`
	UserID     string    `bun:"user_id,pk" json:"user_id"`
	Position   int       `bun:"position,notnull" json:"position"`
	Score      int       `bun:"score,notnull" json:"score"`
	Stars      int       `bun:"stars,notnull" json:"stars"`
	Golds      int       `bun:"golds,notnull" json:"golds"`
	Silvers    int       `bun:"silvers,notnull" json:"silvers"`
	Bronzes    int       `bun:"bronzes,notnull" json:"bronzes"`
	ComputedAt time.Time `bun:"computed_at,notnull" json:"computed_at"`
}

// YearVersion summarizes everything a year leaderboard is computed from.
// Any completion, new user or profile change moves at least one field.
type YearVersion struct {
	Completed    int          `bun:"completed"`
	LastStop     sql.NullTime `bun:"last_stop"`
	Users        int          `bun:"users"`
	UsersUpdated sql.NullTime `bun:"users_updated"`
}

// Equal compares instants rather than time.Time representations.
func (v YearVersion) Equal(o YearVersion) bool {
	return v.Completed == o.Completed &&
		v.Users == o.Users &&
		nullTimeEqual(v.LastStop, o.LastStop) &&
		nullTimeEqual(v.UsersUpdated, o.UsersUpdated)
}

func nullTimeEqual(a, b sql.NullTime) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Time.Equal(b.Time)
}
