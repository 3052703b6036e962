package cache

import (
	"time"

	"github.com/coocood/freecache"

	"github.com/unit-xyz/goapi/base/ctx"
)

type primitive struct {
	name  string
	cache *freecache.Cache
}

// NewPrimitive creates an in-process cache of size megabytes.
func NewPrimitive(name string, size int) Service {
	return &primitive{name, freecache.NewCache(size * 1024 * 1024)}
}

func (im *primitive) Get(c ctx.Ctx, key string) ([]byte, error) {
	val, err := im.cache.Get([]byte(key))
	if err != nil {
		if err == freecache.ErrNotFound {
			return nil, ErrNotFound
		}
		c.WithField("err", err).WithField("key", key).Error("cache.Get failed")
		return nil, err
	}
	return val, nil
}

func (im *primitive) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	if err := im.cache.Set([]byte(key), value, int(ttl.Seconds())); err != nil {
		c.WithField("err", err).WithField("key", key).Error("cache.Set failed")
		return err
	}
	return nil
}

func (im *primitive) Del(c ctx.Ctx, key string) error {
	im.cache.Del([]byte(key))
	return nil
}
