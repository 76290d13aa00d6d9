package timerintegrationtests

import (
	"testing"

	"github.com/Black-And-White-Club/advent-board/app/eventbus"
	timerservice "github.com/Black-And-White-Club/advent-board/app/modules/timer/application"
	timerdb "github.com/Black-And-White-Club/advent-board/app/modules/timer/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/advent-board/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/advent-board/integration_tests/testutils"
	"go.opentelemetry.io/otel/trace/noop"
)

type TimerTestDeps struct {
	Env     *testutils.TestEnvironment
	Repo    timerdb.Repository
	Service *timerservice.TimerService
	Bus     eventbus.EventBus
}

func SetupTestTimerService(t *testing.T) TimerTestDeps {
	t.Helper()
	env := testutils.GetOrCreateTestEnv(t)
	env.CleanDatabase(t)

	bus := eventbus.NewInProcessEventBus(env.Logger)
	t.Cleanup(func() { _ = bus.Close() })

	repo := timerdb.NewRepository(env.DB)
	svc := timerservice.NewTimerService(
		repo,
		userdb.NewRepository(env.DB),
		bus,
		env.Logger,
		nil,
		noop.NewTracerProvider().Tracer("test"),
		env.DB,
	)
	return TimerTestDeps{Env: env, Repo: repo, Service: svc, Bus: bus}
}
