package api

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"forecastconsole/internal/table"
)

// listCache holds recent List responses keyed by "<resource>?<query>".
// A nil *listCache is valid and caches nothing.
type listCache struct {
	lru *expirable.LRU[string, []table.Record]
}

func newListCache(size int, ttl time.Duration) *listCache {
	if size <= 0 || ttl <= 0 {
		return nil
	}
	return &listCache{lru: expirable.NewLRU[string, []table.Record](size, nil, ttl)}
}

func cacheKey(r Resource, query string) string {
	return string(r) + "?" + query
}

func (c *listCache) get(key string) ([]table.Record, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *listCache) add(key string, records []table.Record) {
	if c == nil {
		return
	}
	c.lru.Add(key, records)
}

// invalidate drops every cached list of resource r.
func (c *listCache) invalidate(r Resource) {
	if c == nil {
		return
	}
	prefix := string(r) + "?"
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}

func (c *listCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *listCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
