// Package refcache caches slow-changing reference data (districts,
// services) with an explicit TTL.  Values live in Redis when a client is
// supplied and in process memory otherwise.
package refcache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/bqomis-portal/internal/model"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// Keys of the cached collections.
const (
	KeyDistricts = "districts"
	KeyServices  = "services"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Cache is a read-through cache.  The zero value is not usable; call New.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *logging.Logger

	mu  sync.Mutex
	mem map[string]entry
	now func() time.Time
}

// New creates a cache.  rdb may be nil.
func New(rdb *redis.Client, prefix string, ttl time.Duration, logger *logging.Logger) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if prefix == "" {
		prefix = "ref"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl, logger: logger, mem: make(map[string]entry), now: time.Now}
}

// Districts returns the cached district list, calling load on a miss.
func (c *Cache) Districts(ctx context.Context, load func(context.Context) ([]model.District, error)) ([]model.District, error) {
	return getOrLoad(ctx, c, KeyDistricts, load)
}

// Services returns the cached service list, calling load on a miss.
func (c *Cache) Services(ctx context.Context, load func(context.Context) ([]model.Service, error)) ([]model.Service, error) {
	return getOrLoad(ctx, c, KeyServices, load)
}

// Invalidate drops the given keys so the next read reloads them.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.mem, k)
	}
	c.mu.Unlock()

	if c.rdb == nil || len(keys) == 0 {
		return
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		c.logger.Warn("refcache: invalidate failed", "keys", keys, "error", err)
	}
}

func (c *Cache) key(k string) string { return c.prefix + ":" + k }

func (c *Cache) get(ctx context.Context, k string) ([]byte, bool) {
	if c.rdb != nil {
		bs, err := c.rdb.Get(ctx, c.key(k)).Bytes()
		if err == nil {
			return bs, true
		}
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("refcache: redis get failed", "key", k, "error", err)
		}
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.mem[k]
	if !ok || !c.now().Before(e.expires) {
		delete(c.mem, k)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) set(ctx context.Context, k string, v []byte) {
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, c.key(k), v, c.ttl).Err(); err != nil {
			c.logger.Warn("refcache: redis set failed", "key", k, "error", err)
		}
		return
	}
	c.mu.Lock()
	c.mem[k] = entry{value: v, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// getOrLoad never caches a failed load.  A corrupt cached value is treated
// as a miss.
func getOrLoad[T any](ctx context.Context, c *Cache, k string, load func(context.Context) ([]T, error)) ([]T, error) {
	if bs, ok := c.get(ctx, k); ok {
		var out []T
		if err := json.Unmarshal(bs, &out); err == nil {
			return out, nil
		}
	}
	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	if bs, err := json.Marshal(out); err == nil {
		c.set(ctx, k, bs)
	}
	return out, nil
}
