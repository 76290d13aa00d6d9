package scoringservice

import (
	"slices"
	"sync"

	scoringdb "github.com/Black-And-White-Club/advent-board/app/modules/scoring/infrastructure/repositories"
)

// YearCache memoizes year leaderboards against the YearVersion they were
// computed from. A lookup with a different version misses, so writes made
// by other processes are picked up without an event. Invalidate drops a
// year early and bumps its generation, which stops a computation that raced
// with it from storing its result.
type YearCache struct {
	mu      sync.RWMutex
	entries map[int]cacheEntry
	gen     map[int]uint64
}

type cacheEntry struct {
	version   scoringdb.YearVersion
	standings []Standing
}

// NewYearCache creates an empty cache.
func NewYearCache() *YearCache {
	return &YearCache{
		entries: make(map[int]cacheEntry),
		gen:     make(map[int]uint64),
	}
}

// Get returns a copy of the standings cached for year at version, and the
// generation observed for a later Put.
func (c *YearCache) Get(year int, version scoringdb.YearVersion) ([]Standing, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[year]
	if !ok || !e.version.Equal(version) {
		return nil, c.gen[year], false
	}
	return slices.Clone(e.standings), c.gen[year], true
}

// Put stores standings computed from version at generation gen. It is a
// no-op if the year was invalidated since.
func (c *YearCache) Put(year int, gen uint64, version scoringdb.YearVersion, standings []Standing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[year] != gen {
		return
	}
	c.entries[year] = cacheEntry{version: version, standings: slices.Clone(standings)}
}

// Invalidate drops the year and bumps its generation.
func (c *YearCache) Invalidate(year int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, year)
	c.gen[year]++
}
