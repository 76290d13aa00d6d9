package main

import (
	"context"
	"fmt"
	"time"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
)

// unlockHour is when puzzles open: midnight US Eastern, in UTC.
const unlockHour = 5

// SeedTimer is one generated attempt.
type SeedTimer struct {
	Key  timerdomain.Key
	Init time.Time
	Stop time.Time
}

// SeedPlan is a reproducible set of users and completed timers.
type SeedPlan struct {
	Users  []userdb.User
	Timers []SeedTimer
}

// PlanSeed generates users and completions for days 1..days of year. Star 2
// is only attempted after star 1 completes, and nothing ends after now.
func PlanSeed(faker *gofakeit.Faker, year, users, days int, now time.Time) SeedPlan {
	var plan SeedPlan
	for i := 0; i < users; i++ {
		image := faker.URL()
		plan.Users = append(plan.Users, userdb.User{
			ID:    faker.UUID(),
			Name:  faker.Username(),
			Image: &image,
		})
	}

	for day := 1; day <= days; day++ {
		unlock := time.Date(year, time.December, day, unlockHour, 0, 0, 0, time.UTC)
		for _, u := range plan.Users {
			if faker.Float64() > 0.8 {
				continue
			}
			init1 := unlock.Add(time.Duration(faker.IntRange(0, 180)) * time.Minute)
			stop1 := init1.Add(time.Duration(faker.IntRange(60, 3*3600)) * time.Second)
			if stop1.After(now) {
				continue
			}
			plan.Timers = append(plan.Timers, SeedTimer{
				Key:  timerdomain.Key{UserID: u.ID, Year: year, Day: day, Star: 1},
				Init: init1, Stop: stop1,
			})

			if faker.Float64() > 0.7 {
				continue
			}
			init2 := stop1.Add(time.Duration(faker.IntRange(0, 120)) * time.Second)
			stop2 := init2.Add(time.Duration(faker.IntRange(30, 2*3600)) * time.Second)
			if stop2.After(now) {
				continue
			}
			plan.Timers = append(plan.Timers, SeedTimer{
				Key:  timerdomain.Key{UserID: u.ID, Year: year, Day: day, Star: 2},
				Init: init2, Stop: stop2,
			})
		}
	}
	return plan
}

// ApplySeed writes plan in one transaction. Existing timers are left as is.
func ApplySeed(ctx context.Context, db *bun.DB, plan SeedPlan) error {
	users := userdb.NewRepository(db)
	timers := timerdb.NewRepository(db)

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i := range plan.Users {
			if err := users.Save(ctx, tx, &plan.Users[i]); err != nil {
				return fmt.Errorf("seed user %s: %w", plan.Users[i].ID, err)
			}
		}
		for _, t := range plan.Timers {
			created, err := timers.Insert(ctx, tx, t.Key, t.Init)
			if err != nil {
				return fmt.Errorf("seed timer %s: %w", t.Key, err)
			}
			if !created {
				continue
			}
			if err := timers.Complete(ctx, tx, t.Key, t.Stop); err != nil {
				return fmt.Errorf("complete timer %s: %w", t.Key, err)
			}
		}
		return nil
	})
}
