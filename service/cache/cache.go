package cache

import (
	"errors"
	"time"

	"github.com/unit-xyz/goapi/base/ctx"
)

// ErrNotFound is returned when the key is absent or expired
var ErrNotFound = errors.New("cache key not found")

// Service is a byte cache with per-key TTL.
type Service interface {
	Get(c ctx.Ctx, key string) ([]byte, error)
	Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error
	Del(c ctx.Ctx, key string) error
}
