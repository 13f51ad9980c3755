package facts

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedLookup is a per-name read-through cache over another Lookup. Facts
// only change at ingest time, so a short TTL keeps every chat turn from
// hitting the database.
type CachedLookup struct {
	inner Lookup
	cache *cache.Cache
}

// NewCachedLookup wraps inner with a TTL cache. A non-positive ttl defaults
// to five minutes.
func NewCachedLookup(inner Lookup, ttl time.Duration) *CachedLookup {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedLookup{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

var _ Lookup = (*CachedLookup)(nil)

func (c *CachedLookup) GetFacts(ctx context.Context, names []string) (map[string]Fact, error) {
	out := make(map[string]Fact, len(names))
	var missing []string
	for _, n := range names {
		if x, found := c.cache.Get(n); found {
			if f, ok := x.(Fact); ok {
				out[n] = f
			}
			// a cached tombstone means "known absent"; skip the fetch
			continue
		}
		missing = append(missing, n)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.inner.GetFacts(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, n := range missing {
		if f, ok := fetched[n]; ok {
			out[n] = f
			c.cache.Set(n, f, cache.DefaultExpiration)
		} else {
			c.cache.Set(n, nil, cache.DefaultExpiration)
		}
	}
	return out, nil
}
