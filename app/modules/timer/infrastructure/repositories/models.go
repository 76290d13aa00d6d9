package timerdb

import (
	"time"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	"github.com/uptrace/bun"
)

// Timer is the persisted attempt window of one user at one day/star.
type Timer struct {
	bun.BaseModel `bun:"table:timers,alias:t"`

	ID       int64      `bun:"id,pk,autoincrement" json:"-"`
	UserID   string     `bun:"user_id,notnull" json:"user_id"`
	Year     int        `bun:"year,notnull" json:"year"`
	Day      int        `bun:"day,notnull" json:"day"`
	Star     int        `bun:"star,notnull" json:"star"`
	InitTime time.Time  `bun:"init_time,notnull,default:current_timestamp" json:"init_time"`
	StopTime *time.Time `bun:"stop_time,nullzero" json:"stop_time,omitempty"`
}

// ToDomain converts the row into the domain representation.
func (t Timer) ToDomain() timerdomain.Timer {
	return timerdomain.Timer{
		Key: timerdomain.Key{
			UserID: t.UserID,
			Year:   t.Year,
			Day:    t.Day,
			Star:   t.Star,
		},
		InitTime: t.InitTime,
		StopTime: t.StopTime,
	}
}

// ToDomainSlice converts a batch of rows, preserving order.
func ToDomainSlice(rows []Timer) []timerdomain.Timer {
	out := make([]timerdomain.Timer, len(rows))
	for i, row := range rows {
		out[i] = row.ToDomain()
	}
	return out
}
