package timerservice

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// TimeParser turns operator input into instants. It accepts RFC3339,
// "now", and natural language such as "today 6am" or "yesterday at 18:30".
type TimeParser struct {
	TimezoneMap map[string]string
	parser      *when.Parser
}

var compactClock = regexp.MustCompile(`\b(\d{1,2})(\d{2})(am|pm)\b`)

// NewTimeParser creates a TimeParser with US abbreviations mapped to IANA zones.
func NewTimeParser() *TimeParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &TimeParser{
		TimezoneMap: map[string]string{
			"UTC": "UTC",
			"PST": "America/Los_Angeles",
			"PDT": "America/Los_Angeles",
			"MST": "America/Denver",
			"MDT": "America/Denver",
			"CST": "America/Chicago",
			"CDT": "America/Chicago",
			"EST": "America/New_York",
			"EDT": "America/New_York",
		},
		parser: w,
	}
}

// ResolveLocation accepts an abbreviation from TimezoneMap or an IANA name.
func (tp *TimeParser) ResolveLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	if full, ok := tp.TimezoneMap[strings.ToUpper(tz)]; ok {
		tz = full
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Parse resolves input relative to clock in the given timezone and returns
// the instant in UTC. Instants in the future are rejected since a timer can
// only record something that already happened.
func (tp *TimeParser) Parse(input, tz string, clock Clock) (time.Time, error) {
	loc, err := tp.ResolveLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	now := clock.Now().In(loc)

	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "now") {
		return now.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return tp.notFuture(t, now)
	}

	normalized := strings.ToLower(input)
	normalized = strings.ReplaceAll(normalized, "today ", "today at ")
	normalized = compactClock.ReplaceAllString(normalized, "$1:$2 $3")

	r, err := tp.parser.Parse(normalized, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize time format: %s", input)
	}
	return tp.notFuture(r.Time.In(loc), now)
}

func (tp *TimeParser) notFuture(t, now time.Time) (time.Time, error) {
	if t.Truncate(time.Second).After(now) {
		return time.Time{}, fmt.Errorf("time %s is in the future (now %s)", t.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	return t.UTC(), nil
}
