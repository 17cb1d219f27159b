package kv

import (
	"context"
	"errors"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

var _ Store = (*Cached)(nil)

// Cached puts a freecache read-through, write-through layer in front of another Store.
type Cached struct {
	next  Store
	cache *freecache.Cache
}

func NewCached(next Store, cacheSizeMegabytes int) *Cached {
	megabyte := 1024 * 1024
	return &Cached{
		next:  next,
		cache: freecache.NewCache(cacheSizeMegabytes * megabyte),
	}
}

func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	if v, err := c.cache.Get([]byte(key)); err == nil {
		log.Tracef("kv cache hit: %s", key)
		return v, nil
	}

	v, err := c.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set([]byte(key), v, 0); err != nil {
		// values larger than 1/1024 of the cache are rejected; serve uncached
		log.Debugf("kv cache set %s: %s", key, err)
	}
	return v, nil
}

func (c *Cached) Set(ctx context.Context, key string, value []byte) error {
	if err := c.next.Set(ctx, key, value); err != nil {
		c.cache.Del([]byte(key))
		return err
	}
	if err := c.cache.Set([]byte(key), value, 0); err != nil {
		c.cache.Del([]byte(key))
		if !errors.Is(err, freecache.ErrLargeEntry) {
			log.Debugf("kv cache set %s: %s", key, err)
		}
	}
	return nil
}

// HitRate reports the fraction of Gets served from memory.
func (c *Cached) HitRate() float64 {
	return c.cache.HitRate()
}
