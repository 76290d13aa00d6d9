package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/eventbus"
	scoringservice "github.com/Black-And-White-Club/advent-board/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/advent-board/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/repositories"
	timerservice "github.com/Black-And-White-Club/advent-board/app/modules/timer/application"
	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/advent-board/app/observability"
	"github.com/Black-And-White-Club/advent-board/config"
	"github.com/Black-And-White-Club/advent-board/db/bundb"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

// env is built once in Before and shared by every command.
type env struct {
	cfg    *config.Config
	db     *bun.DB
	logger *slog.Logger
	bus    eventbus.EventBus
	out    io.Writer
}

func (e *env) close() {
	if e.bus != nil {
		_ = e.bus.Close()
	}
	if e.db != nil {
		_ = e.db.Close()
	}
}

func (e *env) timerService() *timerservice.TimerService {
	return timerservice.NewTimerService(
		timerdb.NewRepository(e.db), userdb.NewRepository(e.db), e.bus,
		e.logger, observability.NewNoop(), observability.Tracer("advent-admin"), e.db,
	)
}

func (e *env) scoringService() (*scoringservice.ScoringService, error) {
	base, err := scoringdomain.ParsePointsBase(e.cfg.Scoring.PointsBase)
	if err != nil {
		return nil, err
	}
	return scoringservice.NewScoringService(
		timerdb.NewRepository(e.db), userdb.NewRepository(e.db), scoringdb.NewRepository(e.db),
		e.logger, observability.NewNoop(), observability.Tracer("advent-admin"), e.db,
		scoringservice.WithPointsBase(base),
	), nil
}

var (
	yearFlag = &cli.IntFlag{Name: "year", Aliases: []string{"y"}, Usage: "competition year", Value: defaultYear()}
	dayFlag  = &cli.IntFlag{Name: "day", Aliases: []string{"d"}, Usage: "puzzle day (1-25)", Required: true}
	starFlag = &cli.IntFlag{Name: "star", Aliases: []string{"s"}, Usage: "star (1 or 2)", Value: 1}
	userFlag = &cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "user id", Required: true}
)

// defaultYear is the current edition once December starts, else the last one.
func defaultYear() int {
	now := time.Now().UTC()
	if now.Month() == time.December {
		return now.Year()
	}
	return now.Year() - 1
}

func newCLI(out io.Writer) *cli.App {
	e := &env{out: out}

	return &cli.App{
		Name:  "advent-admin",
		Usage: "operate the advent leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.yaml", Usage: "Path to the configuration file"},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			e.cfg = cfg
			e.logger = observability.NewLogger(os.Stderr, cfg.Observability.Environment, cfg.Observability.LogLevel)
			e.db = bundb.Open(cfg.Postgres.DSN)
			bus, err := eventbus.NewEventBus(c.Context, cfg.NATS.URL, e.logger)
			if err != nil {
				return err
			}
			e.bus = bus
			return nil
		},
		After: func(c *cli.Context) error {
			e.close()
			return nil
		},
		Commands: []*cli.Command{
			timerCommand(e),
			standingsCommand(e),
			dayCommand(e),
			exportCommand(e),
			snapshotCommand(e),
			userCommand(e),
			seedCommand(e),
		},
	}
}

func timerCommand(e *env) *cli.Command {
	keyFrom := func(c *cli.Context) timerdomain.Key {
		return timerdomain.Key{UserID: c.String("user"), Year: c.Int("year"), Day: c.Int("day"), Star: c.Int("star")}
	}
	atFlag := &cli.StringFlag{Name: "at", Usage: `when, e.g. "now", "today 6:05am" or RFC3339`, Value: "now"}

	run := func(op func(context.Context, timerdomain.Key, time.Time) (*timerdomain.Timer, error)) cli.ActionFunc {
		return func(c *cli.Context) error {
			at, err := timerservice.NewTimeParser().Parse(c.String("at"), e.cfg.Admin.Timezone, timerservice.RealClock{})
			if err != nil {
				return err
			}
			t, err := op(c.Context, keyFrom(c), at)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s %s (started %s)\n", t.Key, t.State(), t.InitTime.Format(time.RFC3339))
			if d, ok := t.Duration(); ok {
				fmt.Fprintf(e.out, "duration %s\n", scoringservice.FormatDuration(d))
			}
			return nil
		}
	}

	flags := []cli.Flag{userFlag, yearFlag, dayFlag, starFlag, atFlag}
	return &cli.Command{
		Name:  "timer",
		Usage: "start or complete a timer",
		Subcommands: []*cli.Command{
			{
				Name:  "start",
				Flags: flags,
				Action: func(c *cli.Context) error {
					return run(e.timerService().StartTimer)(c)
				},
			},
			{
				Name:  "complete",
				Flags: flags,
				Action: func(c *cli.Context) error {
					return run(e.timerService().CompleteTimer)(c)
				},
			},
		},
	}
}

func standingsCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print the year leaderboard",
		Flags: []cli.Flag{
			yearFlag,
			&cli.BoolFlag{Name: "snapshot", Usage: "read the last persisted snapshot instead of computing"},
		},
		Action: func(c *cli.Context) error {
			svc, err := e.scoringService()
			if err != nil {
				return err
			}
			year := c.Int("year")
			var standings []scoringservice.Standing
			if c.Bool("snapshot") {
				standings, err = svc.GetSnapshot(c.Context, year)
			} else {
				standings, err = svc.YearLeaderboard(c.Context, year)
			}
			if err != nil {
				return err
			}
			RenderStandings(e.out, fmt.Sprintf("Advent of Code %d", year), standings, termWidth(e.out), isTTYWriter(e.out))
			return nil
		},
	}
}

func dayCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "day",
		Usage: "print one day's leaderboard",
		Flags: []cli.Flag{
			yearFlag, dayFlag,
			&cli.IntFlag{Name: "star", Aliases: []string{"s"}, Usage: "rank a single star (1 or 2)"},
		},
		Action: func(c *cli.Context) error {
			svc, err := e.scoringService()
			if err != nil {
				return err
			}
			var star *int
			if c.IsSet("star") {
				s := c.Int("star")
				star = &s
			}
			entries, err := svc.DayLeaderboard(c.Context, c.Int("year"), c.Int("day"), star)
			if err != nil {
				return err
			}
			title := fmt.Sprintf("Day %d, %d", c.Int("day"), c.Int("year"))
			RenderDay(e.out, title, entries, termWidth(e.out), isTTYWriter(e.out))
			return nil
		},
	}
}

func exportCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the year leaderboard as .xlsx or .png",
		Flags: []cli.Flag{
			yearFlag,
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (.xlsx or .png)", Required: true},
		},
		Action: func(c *cli.Context) error {
			svc, err := e.scoringService()
			if err != nil {
				return err
			}
			path := c.String("out")
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()

			switch {
			case strings.HasSuffix(path, ".png"):
				err = svc.YearChart(c.Context, c.Int("year"), f)
			case strings.HasSuffix(path, ".xlsx"):
				err = svc.ExportYear(c.Context, c.Int("year"), f)
			default:
				return fmt.Errorf("unsupported output %q: want .xlsx or .png", path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "wrote %s\n", path)
			return f.Close()
		},
	}
}

func snapshotCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "recompute and persist the year standings",
		Flags: []cli.Flag{yearFlag},
		Action: func(c *cli.Context) error {
			svc, err := e.scoringService()
			if err != nil {
				return err
			}
			standings, err := svc.SnapshotYear(c.Context, c.Int("year"))
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "stored %d standings for %d\n", len(standings), c.Int("year"))
			return nil
		},
	}
}

func userCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "manage users",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "create or update a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "image"},
				},
				Action: func(c *cli.Context) error {
					u := &userdb.User{ID: c.String("id"), Name: c.String("name")}
					if img := c.String("image"); img != "" {
						u.Image = &img
					}
					if err := userdb.NewRepository(e.db).Save(c.Context, nil, u); err != nil {
						return err
					}
					fmt.Fprintf(e.out, "saved user %s\n", u.ID)
					return nil
				},
			},
		},
	}
}

func seedCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert fake users and completed timers",
		Flags: []cli.Flag{
			yearFlag,
			&cli.IntFlag{Name: "users", Value: 20},
			&cli.IntFlag{Name: "days", Value: timerdomain.DaysPerYear},
			&cli.Uint64Flag{Name: "seed", Usage: "random seed (0 picks one)"},
		},
		Action: func(c *cli.Context) error {
			seed := c.Uint64("seed")
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			days := min(max(c.Int("days"), 1), timerdomain.DaysPerYear)
			plan := PlanSeed(gofakeit.New(seed), c.Int("year"), c.Int("users"), days, time.Now().UTC())
			if err := ApplySeed(c.Context, e.db, plan); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "seeded %d users and %d timers (seed %d)\n", len(plan.Users), len(plan.Timers), seed)
			return nil
		},
	}
}
