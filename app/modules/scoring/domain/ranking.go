// Package scoringdomain turns completed timers into per-star rankings and a
// year-wide scored leaderboard. It is pure: no I/O, no errors, and inputs are
// never mutated.
package scoringdomain

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
)

// Unranked marks entries produced by Annotate.
const Unranked = -1

// PointsBase selects N in points = N - rank.
type PointsBase int

const (
	// PointsBaseFinishers uses the size of each day/star board.
	PointsBaseFinishers PointsBase = iota
	// PointsBaseUsers uses the number of known users.
	PointsBaseUsers
)

func (b PointsBase) String() string {
	if b == PointsBaseUsers {
		return "users"
	}
	return "finishers"
}

// ParsePointsBase accepts "finishers" or "users".
func ParsePointsBase(s string) (PointsBase, error) {
	switch s {
	case "", "finishers":
		return PointsBaseFinishers, nil
	case "users":
		return PointsBaseUsers, nil
	default:
		return PointsBaseFinishers, fmt.Errorf("unknown points base %q", s)
	}
}

// RankedEntry is one completed star on a board.
type RankedEntry struct {
	UserID   string
	Day      int
	Star     int
	InitTime time.Time
	StopTime time.Time
	Duration time.Duration
	Rank     int
}

// Medal returns "gold", "silver", "bronze" or "" for the entry's rank.
func (e RankedEntry) Medal() string {
	switch e.Rank {
	case 0:
		return "gold"
	case 1:
		return "silver"
	case 2:
		return "bronze"
	default:
		return ""
	}
}

// Board is the ranked result of one day/star.
type Board struct {
	Day     int
	Star    int
	Entries []RankedEntry
}

// ScoreSummary is a user's accumulated result for a year.
type ScoreSummary struct {
	UserID  string
	Score   int
	Stars   int
	Golds   int
	Silvers int
	Bronzes int
}

// Annotate computes durations for completed timers without ranking them.
// Timers without a stop time are dropped; order is preserved.
func Annotate(timers []timerdomain.Timer) []RankedEntry {
	out := make([]RankedEntry, 0, len(timers))
	for i := range timers {
		t := &timers[i]
		d, ok := t.Duration()
		if !ok {
			continue
		}
		out = append(out, RankedEntry{
			UserID:   t.UserID,
			Day:      t.Day,
			Star:     t.Star,
			InitTime: t.InitTime,
			StopTime: *t.StopTime,
			Duration: d,
			Rank:     Unranked,
		})
	}
	return out
}

// RankStar ranks completed timers of one day/star fastest first. Equal
// durations keep their input order; rank is the position after sorting.
func RankStar(timers []timerdomain.Timer) []RankedEntry {
	entries := Annotate(timers)
	slices.SortStableFunc(entries, func(a, b RankedEntry) int {
		return cmp.Compare(a.Duration, b.Duration)
	})
	for i := range entries {
		entries[i].Rank = i
	}
	return entries
}

// Points awarded for rank on a board of n. Never negative.
func Points(rank, n int) int {
	return max(n-rank, 0)
}

// ScoreYear accumulates every board into one summary per known user, in the
// order of userIDs. Finishers missing from userIDs keep their rank position
// but are not emitted.
func ScoreYear(userIDs []string, boards []Board, base PointsBase) []ScoreSummary {
	out := make([]ScoreSummary, len(userIDs))
	index := make(map[string]int, len(userIDs))
	for i, id := range userIDs {
		out[i] = ScoreSummary{UserID: id}
		if _, dup := index[id]; !dup {
			index[id] = i
		}
	}

	for _, board := range boards {
		n := len(board.Entries)
		if base == PointsBaseUsers {
			n = len(userIDs)
		}
		for _, e := range board.Entries {
			i, ok := index[e.UserID]
			if !ok {
				continue
			}
			s := &out[i]
			s.Score += Points(e.Rank, n)
			s.Stars++
			switch e.Rank {
			case 0:
				s.Golds++
			case 1:
				s.Silvers++
			case 2:
				s.Bronzes++
			}
		}
	}
	return out
}

// CompareStandings orders a before b when it has the larger
// (score, stars, golds, silvers, bronzes) tuple.
func CompareStandings(a, b ScoreSummary) int {
	return cmp.Or(
		cmp.Compare(b.Score, a.Score),
		cmp.Compare(b.Stars, a.Stars),
		cmp.Compare(b.Golds, a.Golds),
		cmp.Compare(b.Silvers, a.Silvers),
		cmp.Compare(b.Bronzes, a.Bronzes),
	)
}

// SortStandings returns a stably sorted copy, best first.
func SortStandings(summaries []ScoreSummary) []ScoreSummary {
	out := slices.Clone(summaries)
	slices.SortStableFunc(out, CompareStandings)
	return out
}
