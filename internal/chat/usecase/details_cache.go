package usecase

import (
	"encoding/json"
	"time"

	"github.com/coocood/freecache"
)

const detailsCacheSize = 1024 * 1024

// detailsCache is the short-TTL projection of item/user display data.
// Entries expire after the configured TTL; expired entries are evicted
// on access, so the cache is never a source of truth for anything older
// than one window.
type detailsCache struct {
	cache *freecache.Cache
	ttl   int
}

func newDetailsCache(ttl time.Duration) *detailsCache {
	seconds := int(ttl.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return &detailsCache{
		cache: freecache.NewCache(detailsCacheSize),
		ttl:   seconds,
	}
}

func (c *detailsCache) get(key string, v interface{}) bool {
	data, err := c.cache.Get([]byte(key))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *detailsCache) set(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.cache.Set([]byte(key), data, c.ttl)
}
