// Package regioncache owns the per-region county collections for a session.
// Each region is fetched from the geometry source at most once per process
// run; entries are immutable after creation and only replaced wholesale.
package regioncache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/chloropleth-cli/internal/region"
	"github.com/sells-group/chloropleth-cli/internal/source"
)

// ErrFetch wraps geometry-source failures. A failed load never populates an
// entry, so the next selection of the region retries.
var ErrFetch = eris.New("regioncache: region fetch failed")

// Entry is one region's loaded county set.
type Entry struct {
	Region    region.Region
	Records   []source.CountyRecord
	FetchedAt time.Time
	// Generation identifies the load event that produced this entry.
	Generation uuid.UUID
}

// Cache is the session-scoped region cache. Loads for the same region are
// deduplicated so at most one fetch per region is ever in flight.
type Cache struct {
	src source.GeometrySource

	mu      sync.Mutex
	entries map[region.Region]*Entry
	gens    map[region.Region]uuid.UUID

	group singleflight.Group
	log   *zap.Logger
}

// New creates a Cache over the given geometry source.
func New(src source.GeometrySource) *Cache {
	return &Cache{
		src:     src,
		entries: make(map[region.Region]*Entry),
		gens:    make(map[region.Region]uuid.UUID),
		log:     zap.L().With(zap.String("component", "regioncache")),
	}
}

// GetOrLoad returns the cached entry for a region, fetching it from the
// source on first use. Zero counties is a valid (degenerate) entry. A result
// arriving after Invalidate superseded its load event is discarded.
func (c *Cache) GetOrLoad(ctx context.Context, r region.Region) (*Entry, error) {
	c.mu.Lock()
	if entry, ok := c.entries[r]; ok {
		c.mu.Unlock()
		return entry, nil
	}
	gen, ok := c.gens[r]
	if !ok {
		gen = uuid.New()
		c.gens[r] = gen
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(string(r), func() (any, error) {
		return c.load(ctx, r, gen)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

func (c *Cache) load(ctx context.Context, r region.Region, gen uuid.UUID) (*Entry, error) {
	started := time.Now()
	records, err := c.src.Counties(ctx, r.StateFIPS())
	if err != nil {
		return nil, eris.Wrapf(ErrFetch, "%s: %v", r, err)
	}

	entry := &Entry{
		Region:     r,
		Records:    records,
		FetchedAt:  time.Now(),
		Generation: gen,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[r] != gen {
		// Superseded while the fetch was in flight; drop the result.
		c.log.Info("discarding stale region fetch",
			zap.String("region", string(r)),
			zap.String("generation", gen.String()),
		)
		return nil, eris.Wrapf(ErrFetch, "%s: load superseded", r)
	}
	c.entries[r] = entry

	c.log.Info("region loaded",
		zap.String("region", string(r)),
		zap.Int("counties", len(records)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return entry, nil
}

// Invalidate drops a region's entry and supersedes any in-flight load, so
// the next GetOrLoad fetches fresh data.
func (c *Cache) Invalidate(r region.Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, r)
	c.gens[r] = uuid.New()
}

// Loaded reports the regions currently held, for status display.
func (c *Cache) Loaded() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]*Entry, 0, len(c.entries))
	for _, r := range region.All {
		if e, ok := c.entries[r]; ok {
			entries = append(entries, e)
		}
	}
	return entries
}
