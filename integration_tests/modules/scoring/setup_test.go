package scoringintegrationtests

import (
	"testing"
	"time"

	scoringservice "github.com/Black-And-White-Club/advent-board/app/modules/scoring/application"
	scoringdb "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/repositories"
	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/advent-board/integration_tests/testutils"
	"go.opentelemetry.io/otel/trace/noop"
)

var snapshotClock = time.Date(2023, 12, 26, 0, 0, 0, 0, time.UTC)

type ScoringTestDeps struct {
	Env     *testutils.TestEnvironment
	Service *scoringservice.ScoringService
}

func SetupTestScoringService(t *testing.T, opts ...scoringservice.Option) ScoringTestDeps {
	t.Helper()
	env := testutils.GetOrCreateTestEnv(t)
	env.CleanDatabase(t)

	opts = append([]scoringservice.Option{scoringservice.WithClock(func() time.Time { return snapshotClock })}, opts...)
	svc := scoringservice.NewScoringService(
		timerdb.NewRepository(env.DB),
		userdb.NewRepository(env.DB),
		scoringdb.NewRepository(env.DB),
		env.Logger,
		nil,
		noop.NewTracerProvider().Tracer("test"),
		env.DB,
		opts...,
	)
	return ScoringTestDeps{Env: env, Service: svc}
}

// seedExample stores the canonical day-1 board: alice 10s, bob 20s and
// carol 30s on star 1, alice 90s on star 2, dave still working.
func seedExample(t *testing.T, env *testutils.TestEnvironment) {
	t.Helper()
	ctx, db := env.Ctx, env.DB
	testutils.InsertUsers(t, ctx, db, "alice", "bob", "carol", "dave")

	unlock := time.Date(2023, 12, 1, 5, 0, 0, 0, time.UTC)
	key := func(user string, star int) timerdomain.Key {
		return timerdomain.Key{UserID: user, Year: 2023, Day: 1, Star: star}
	}
	testutils.InsertCompleted(t, ctx, db, key("carol", 1), unlock, 30*time.Second)
	testutils.InsertCompleted(t, ctx, db, key("alice", 1), unlock, 10*time.Second)
	testutils.InsertCompleted(t, ctx, db, key("bob", 1), unlock, 20*time.Second)
	testutils.InsertCompleted(t, ctx, db, key("alice", 2), unlock, 90*time.Second)
	if _, err := timerdb.NewRepository(db).Insert(ctx, nil, key("dave", 1), unlock); err != nil {
		t.Fatalf("failed to insert open timer: %v", err)
	}
}

type row struct {
	Position int
	UserID   string
	Score    int
	Stars    int
}

func rows(standings []scoringservice.Standing) []row {
	out := make([]row, len(standings))
	for i, s := range standings {
		out[i] = row{Position: s.Position, UserID: s.UserID, Score: s.Score, Stars: s.Stars}
	}
	return out
}
