package memory

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"app_analyser/internal/adapters/observability"
)

// Cache is the in-process session cache. Values are stored as JSON so callers never
// share memory with a cached entry, matching the redis backend.
type Cache struct {
	name string
	c    *gocache.Cache
}

// New returns a cache whose entries live until the process exits unless Set gives a TTL.
func New(name string) *Cache {
	return &Cache{name: name, c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func (m *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		observability.ObserveCache(m.name, "miss")
		return false, nil
	}
	observability.ObserveCache(m.name, "hit")
	return true, json.Unmarshal(v.([]byte), dst)
}

// Set stores v; ttlSec <= 0 keeps it for the life of the cache.
func (m *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ttl := gocache.NoExpiration
	if ttlSec > 0 {
		ttl = time.Duration(ttlSec) * time.Second
	}
	observability.ObserveCache(m.name, "set")
	m.c.Set(key, b, ttl)
	return nil
}

func (m *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache(m.name, "del")
	m.c.Delete(key)
	return nil
}

func (m *Cache) Len() int { return m.c.ItemCount() }
