package launches

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"launchdeck/internal/store"

	"go.uber.org/zap"
)

// cacheEntry is one cached window.
type cacheEntry struct {
	Records   []LaunchRecord `json:"records"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// Cache holds fetched windows in memory and, when a backend is given,
// persists them so a restarted session can render without the network.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	kv      store.Store
	logger  *zap.Logger
	now     func() time.Time
}

// NewCache creates a cache. kv may be nil for memory-only caching.
func NewCache(ttl time.Duration, kv store.Store, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		kv:      kv,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns a copy of the records for key if present and fresh. Stale
// entries are dropped from memory and from the backend.
func (c *Cache) Get(ctx context.Context, key string) ([]LaunchRecord, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok && c.kv != nil {
		entry, ok = c.loadPersisted(ctx, key)
		if ok {
			c.mu.Lock()
			c.entries[key] = entry
			c.mu.Unlock()
		}
	}
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.FetchedAt) > c.ttl {
		c.evict(ctx, key)
		return nil, false
	}
	return append([]LaunchRecord(nil), entry.Records...), true
}

// Put stores records under key.
func (c *Cache) Put(ctx context.Context, key string, records []LaunchRecord) {
	entry := cacheEntry{Records: append([]LaunchRecord(nil), records...), FetchedAt: c.now()}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	if c.kv == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("cache entry not persisted", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.kv.Set(ctx, key, data); err != nil {
		c.logger.Warn("cache entry not persisted", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) evict(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.kv == nil {
		return
	}
	if err := c.kv.Delete(ctx, key); err != nil {
		c.logger.Warn("stale cache entry not removed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) loadPersisted(ctx context.Context, key string) (cacheEntry, bool) {
	data, found, err := c.kv.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return cacheEntry{}, false
	}
	if !found {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("cache entry unreadable", zap.String("key", key), zap.Error(err))
		return cacheEntry{}, false
	}
	return entry, true
}
