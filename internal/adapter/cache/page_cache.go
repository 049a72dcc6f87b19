package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// PageCache is a bounded in-memory cache of fetched page bodies keyed by URL.
// Entries expire after ttl; the least recently used entry is evicted first.
type PageCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	hits    int
	misses  int
}

type cacheEntry struct {
	body      []byte
	timestamp time.Time
}

func NewPageCache(maxSize int, ttl time.Duration) *PageCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PageCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:16])
}

func (c *PageCache) Get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(url)
	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses++
		return nil, false
	}

	c.moveToEnd(key)
	c.hits++
	return entry.body, true
}

func (c *PageCache) Put(url string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(url)

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{
			body:      body,
			timestamp: time.Now(),
		}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{
		body:      body,
		timestamp: time.Now(),
	}
	c.order = append(c.order, key)
}

func (c *PageCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

func (c *PageCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts.
func (c *PageCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *PageCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *PageCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *PageCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
