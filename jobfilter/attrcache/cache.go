// Package attrcache keeps attribute definitions in a process-wide,
// size-bounded cache with a TTL, in front of a slower lookup.
package attrcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jobboard/jobfilter/jobfilter/schema"
)

const (
	DefaultSize = 256
	DefaultTTL  = time.Minute
)

type entry struct {
	attr  schema.Attribute
	found bool
}

// Cache wraps a schema.AttributeLookup. Misses are cached as well as hits;
// lookup errors are not.
type Cache struct {
	next schema.AttributeLookup
	lru  *expirable.LRU[string, entry]
}

func New(next schema.AttributeLookup, size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		next: next,
		lru:  expirable.NewLRU[string, entry](size, nil, ttl),
	}
}

// FindByName implements schema.AttributeLookup.
func (c *Cache) FindByName(ctx context.Context, name string) (schema.Attribute, bool, error) {
	if e, ok := c.lru.Get(name); ok {
		return e.attr, e.found, nil
	}
	attr, found, err := c.next.FindByName(ctx, name)
	if err != nil {
		return schema.Attribute{}, false, err
	}
	c.lru.Add(name, entry{attr: attr, found: found})
	return attr, found, nil
}

// Invalidate forgets one attribute, e.g. after it was redefined.
func (c *Cache) Invalidate(name string) {
	c.lru.Remove(name)
}

func (c *Cache) Purge() {
	c.lru.Purge()
}

func (c *Cache) Len() int {
	return c.lru.Len()
}
