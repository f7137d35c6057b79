package registry

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedLookup keeps successful lookups in memory so repeated runs for the
// same company do not hit the paid API again.
type CachedLookup struct {
	next  Lookup
	cache *cache.Cache
}

// NewCachedLookup wraps next with a TTL cache.
func NewCachedLookup(next Lookup, ttl time.Duration) *CachedLookup {
	return &CachedLookup{next: next, cache: cache.New(ttl, 2*ttl)}
}

func (c *CachedLookup) Lookup(ctx context.Context, companyName string) (*Record, error) {
	key := "registry-" + strings.TrimSpace(companyName)
	if rec, found := c.cache.Get(key); found {
		return rec.(*Record), nil
	}
	rec, err := c.next.Lookup(ctx, companyName)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, rec, cache.DefaultExpiration)
	return rec, nil
}
