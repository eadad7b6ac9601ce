// Package cache keeps short-lived per-user metric results in memory.
package cache

import (
	"sync"
	"time"
)

// Defaults used when Config leaves a field unset.
const (
	DefaultTTL             = 60 * time.Second
	DefaultCleanupInterval = 5 * time.Minute
)

// Key identifies one cached metric. Bucket scopes the value to a period,
// usually the current month, so a new month never reads last month's result.
type Key struct {
	UserID string
	Metric string
	Bucket string
}

// Config configures a Cache.
type Config struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Enabled         bool          `mapstructure:"enabled"`
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		TTL:             DefaultTTL,
		CleanupInterval: DefaultCleanupInterval,
		Enabled:         true,
	}
}

type entry struct {
	expiry time.Time
	value  any
}

// Cache is a thread-safe TTL cache. A disabled cache stores nothing.
//
// Every Invalidate bumps the user's generation. GetOrCompute only stores a result
// if no invalidation happened while it was being computed.
type Cache struct {
	entries     map[Key]entry
	generations map[string]uint64
	now         func() time.Time
	stopCh      chan struct{}
	stopOnce    sync.Once
	ttl         time.Duration
	epoch       uint64
	mu          sync.RWMutex
	disabled    bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a cache and starts its cleanup goroutine. Call Close to stop it.
func New(cfg Config, opts ...Option) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}

	c := &Cache{
		entries:     make(map[Key]entry),
		generations: make(map[string]uint64),
		ttl:         cfg.TTL,
		now:         time.Now,
		stopCh:      make(chan struct{}),
		disabled:    !cfg.Enabled,
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanup(cfg.CleanupInterval)

	return c
}

// Get returns the value under key if it exists and hasn't expired.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiry) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the cache TTL.
func (c *Cache) Set(key Key, value any) {
	if c.disabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiry: c.now().Add(c.ttl)}
}

// generation returns a counter that grows whenever userID's entries are dropped.
func (c *Cache) generation(userID string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch + c.generations[userID]
}

// setIfCurrent stores value unless userID was invalidated after gen was read.
func (c *Cache) setIfCurrent(key Key, value any, gen uint64) bool {
	if c.disabled {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch+c.generations[key.UserID] != gen {
		return false
	}
	c.entries[key] = entry{value: value, expiry: c.now().Add(c.ttl)}
	return true
}

// GetOrCompute returns the cached value for key, or calls compute and caches
// its result when cacheable is true. A result computed across an Invalidate of
// the same user is returned but not cached.
func (c *Cache) GetOrCompute(key Key, compute func() (value any, cacheable bool)) any {
	if v, ok := c.Get(key); ok {
		return v
	}
	gen := c.generation(key.UserID)
	v, cacheable := compute()
	if cacheable {
		c.setIfCurrent(key, v, gen)
	}
	return v
}

// Invalidate drops every entry belonging to userID.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[userID]++
	for key := range c.entries {
		if key.UserID == userID {
			delete(c.entries, key)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = make(map[Key]entry)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiry) {
			delete(c.entries, key)
		}
	}
}
