package scoringdomain

import (
	"fmt"
	"testing"
	"time"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2023, 12, 1, 5, 0, 0, 0, time.UTC)

func completed(user string, day, star int, d time.Duration) timerdomain.Timer {
	stop := t0.Add(d)
	return timerdomain.Timer{
		Key:      timerdomain.Key{UserID: user, Year: 2023, Day: day, Star: star},
		InitTime: t0,
		StopTime: &stop,
	}
}

func inProgress(user string, day, star int) timerdomain.Timer {
	return timerdomain.Timer{
		Key:      timerdomain.Key{UserID: user, Year: 2023, Day: day, Star: star},
		InitTime: t0,
	}
}

// randomTimers builds n timers for one day/star with durations drawn from a
// small range so ties are common.
func randomTimers(f *gofakeit.Faker, n int) []timerdomain.Timer {
	out := make([]timerdomain.Timer, 0, n)
	for i := 0; i < n; i++ {
		user := fmt.Sprintf("u%03d", i)
		if f.Float64() < 0.15 {
			out = append(out, inProgress(user, 1, 1))
			continue
		}
		out = append(out, completed(user, 1, 1, time.Duration(f.IntRange(1, 8))*time.Second))
	}
	return out
}

func TestRankStar_Example(t *testing.T) {
	timers := []timerdomain.Timer{
		completed("slow", 1, 1, 30*time.Second),
		completed("fast", 1, 1, 10*time.Second),
		inProgress("idle", 1, 1),
		completed("mid", 1, 1, 20*time.Second),
	}

	got := RankStar(timers)

	want := []RankedEntry{
		{UserID: "fast", Day: 1, Star: 1, InitTime: t0, StopTime: t0.Add(10 * time.Second), Duration: 10 * time.Second, Rank: 0},
		{UserID: "mid", Day: 1, Star: 1, InitTime: t0, StopTime: t0.Add(20 * time.Second), Duration: 20 * time.Second, Rank: 1},
		{UserID: "slow", Day: 1, Star: 1, InitTime: t0, StopTime: t0.Add(30 * time.Second), Duration: 30 * time.Second, Rank: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RankStar() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "gold", got[0].Medal())
	assert.Equal(t, "bronze", got[2].Medal())
}

func TestRankStar_SortedAndStable(t *testing.T) {
	f := gofakeit.New(20231201)

	for iter := 0; iter < 200; iter++ {
		timers := randomTimers(f, f.IntRange(0, 40))
		inputPos := make(map[string]int, len(timers))
		for i, tm := range timers {
			inputPos[tm.UserID] = i
		}

		got := RankStar(timers)

		for i := range got {
			require.Equal(t, i, got[i].Rank)
			if i == 0 {
				continue
			}
			prev, cur := got[i-1], got[i]
			require.LessOrEqual(t, prev.Duration, cur.Duration, "iteration %d", iter)
			if prev.Duration == cur.Duration {
				require.Less(t, inputPos[prev.UserID], inputPos[cur.UserID], "ties keep input order")
			}
		}
	}
}

func TestRankStar_ExcludesInProgress(t *testing.T) {
	got := RankStar([]timerdomain.Timer{inProgress("a", 1, 1), inProgress("b", 1, 1)})
	assert.Empty(t, got)

	scores := ScoreYear([]string{"a", "b"}, []Board{{Day: 1, Star: 1, Entries: got}}, PointsBaseFinishers)
	assert.Equal(t, []ScoreSummary{{UserID: "a"}, {UserID: "b"}}, scores)
}

func TestRankStar_DoesNotMutateInput(t *testing.T) {
	timers := []timerdomain.Timer{
		completed("b", 1, 1, 20*time.Second),
		completed("a", 1, 1, 10*time.Second),
	}
	before := append([]timerdomain.Timer(nil), timers...)

	_ = RankStar(timers)

	if diff := cmp.Diff(before, timers); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestAnnotate_KeepsOrderAndSkipsRanking(t *testing.T) {
	got := Annotate([]timerdomain.Timer{
		completed("b", 2, 2, 20*time.Second),
		inProgress("c", 2, 1),
		completed("a", 2, 1, 10*time.Second),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].UserID)
	assert.Equal(t, "a", got[1].UserID)
	for _, e := range got {
		assert.Equal(t, Unranked, e.Rank)
		assert.Empty(t, e.Medal())
	}
}

func TestPoints(t *testing.T) {
	assert.Equal(t, 3, Points(0, 3))
	assert.Equal(t, 1, Points(2, 3))
	assert.Equal(t, 0, Points(5, 3))
}

func TestScoreYear_PointsSumPerBoard(t *testing.T) {
	f := gofakeit.New(42)

	for iter := 0; iter < 100; iter++ {
		timers := randomTimers(f, f.IntRange(1, 30))
		users := make([]string, len(timers))
		for i, tm := range timers {
			users[i] = tm.UserID
		}
		entries := RankStar(timers)
		n := len(entries)

		scores := ScoreYear(users, []Board{{Day: 1, Star: 1, Entries: entries}}, PointsBaseFinishers)

		total := 0
		for _, s := range scores {
			total += s.Score
		}
		require.Equal(t, n*(n+1)/2, total, "iteration %d", iter)
	}
}

func TestScoreYear_Example(t *testing.T) {
	board := Board{Day: 1, Star: 1, Entries: RankStar([]timerdomain.Timer{
		completed("u10", 1, 1, 10*time.Second),
		completed("u20", 1, 1, 20*time.Second),
		completed("u30", 1, 1, 30*time.Second),
	})}

	got := ScoreYear([]string{"u30", "u20", "u10", "idle"}, []Board{board}, PointsBaseFinishers)

	want := []ScoreSummary{
		{UserID: "u30", Score: 1, Stars: 1, Bronzes: 1},
		{UserID: "u20", Score: 2, Stars: 1, Silvers: 1},
		{UserID: "u10", Score: 3, Stars: 1, Golds: 1},
		{UserID: "idle"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ScoreYear() mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreYear_UsersBase(t *testing.T) {
	board := Board{Day: 1, Star: 1, Entries: RankStar([]timerdomain.Timer{
		completed("a", 1, 1, 10*time.Second),
		completed("b", 1, 1, 20*time.Second),
	})}

	got := ScoreYear([]string{"a", "b", "c", "d", "e"}, []Board{board}, PointsBaseUsers)

	assert.Equal(t, 5, got[0].Score)
	assert.Equal(t, 4, got[1].Score)
	assert.Zero(t, got[2].Score)
}

func TestScoreYear_UnknownFinisherTakesRankButIsNotEmitted(t *testing.T) {
	board := Board{Day: 1, Star: 1, Entries: RankStar([]timerdomain.Timer{
		completed("ghost", 1, 1, 5*time.Second),
		completed("a", 1, 1, 10*time.Second),
	})}

	got := ScoreYear([]string{"a"}, []Board{board}, PointsBaseFinishers)

	require.Len(t, got, 1)
	assert.Equal(t, ScoreSummary{UserID: "a", Score: 1, Stars: 1, Silvers: 1}, got[0])
}

func TestScoreYear_AccumulatesAcrossBoards(t *testing.T) {
	var boards []Board
	for day := 1; day <= timerdomain.DaysPerYear; day++ {
		for star := 1; star <= timerdomain.StarsPerDay; star++ {
			boards = append(boards, Board{Day: day, Star: star, Entries: RankStar([]timerdomain.Timer{
				completed("a", day, star, 10*time.Second),
				completed("b", day, star, 20*time.Second),
			})})
		}
	}

	got := ScoreYear([]string{"a", "b"}, boards, PointsBaseFinishers)

	assert.Equal(t, ScoreSummary{UserID: "a", Score: 100, Stars: 50, Golds: 50}, got[0])
	assert.Equal(t, ScoreSummary{UserID: "b", Score: 50, Stars: 50, Silvers: 50}, got[1])
}

func TestSortStandings_TotalOrder(t *testing.T) {
	f := gofakeit.New(7)
	summaries := make([]ScoreSummary, 300)
	for i := range summaries {
		summaries[i] = ScoreSummary{
			UserID:  f.UUID(),
			Score:   f.IntRange(0, 5),
			Stars:   f.IntRange(0, 3),
			Golds:   f.IntRange(0, 2),
			Silvers: f.IntRange(0, 2),
			Bronzes: f.IntRange(0, 2),
		}
	}
	before := append([]ScoreSummary(nil), summaries...)

	got := SortStandings(summaries)

	require.Len(t, got, len(summaries))
	assert.Equal(t, before, summaries, "input is not mutated")
	key := func(s ScoreSummary) [5]int { return [5]int{s.Score, s.Stars, s.Golds, s.Silvers, s.Bronzes} }
	for i := 1; i < len(got); i++ {
		a, b := key(got[i-1]), key(got[i])
		for k := 0; k < 5; k++ {
			if a[k] != b[k] {
				require.Greater(t, a[k], b[k], "pair %d not ordered on key %d", i, k)
				break
			}
		}
	}
}

func TestSortStandings_TieBreaks(t *testing.T) {
	got := SortStandings([]ScoreSummary{
		{UserID: "fewer-stars", Score: 10, Stars: 2},
		{UserID: "bronze", Score: 10, Stars: 3, Bronzes: 1},
		{UserID: "gold", Score: 10, Stars: 3, Golds: 1},
		{UserID: "silver", Score: 10, Stars: 3, Silvers: 1},
		{UserID: "top", Score: 11},
		{UserID: "tie-a", Score: 1},
		{UserID: "tie-b", Score: 1},
	})

	var ids []string
	for _, s := range got {
		ids = append(ids, s.UserID)
	}
	assert.Equal(t, []string{"top", "gold", "silver", "bronze", "fewer-stars", "tie-a", "tie-b"}, ids)
}

func TestScoreYear_Idempotent(t *testing.T) {
	f := gofakeit.New(99)
	timers := randomTimers(f, 25)
	users := make([]string, len(timers))
	for i, tm := range timers {
		users[i] = tm.UserID
	}
	boards := []Board{{Day: 1, Star: 1, Entries: RankStar(timers)}}

	first := SortStandings(ScoreYear(users, boards, PointsBaseFinishers))
	second := SortStandings(ScoreYear(users, boards, PointsBaseFinishers))

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("not idempotent (-first +second):\n%s", diff)
	}
}

func TestParsePointsBase(t *testing.T) {
	b, err := ParsePointsBase("users")
	require.NoError(t, err)
	assert.Equal(t, PointsBaseUsers, b)
	assert.Equal(t, "users", b.String())

	b, err = ParsePointsBase("")
	require.NoError(t, err)
	assert.Equal(t, PointsBaseFinishers, b)

	_, err = ParsePointsBase("medals")
	assert.Error(t, err)
}
