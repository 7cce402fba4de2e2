// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package orchestrator

import (
	"container/list"
	"sync"
	"time"

	"github.com/pagelens/pagelens/internal/task"
)

const (
	// DefaultCacheTTL is how long an identical request is served from
	// cache instead of re-invoking a provider.
	DefaultCacheTTL = 10 * time.Minute
	// DefaultCacheSize bounds the entry count; least recently used
	// entries are evicted first.
	DefaultCacheSize = 256
)

type cacheEntry struct {
	key        string
	result     task.Result
	insertedAt time.Time
	element    *list.Element
}

// ResultCache memoizes task results under deterministic request keys.
// Entries expire lazily on lookup after the TTL; the size bound evicts in
// LRU order on insert.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	lruList *list.List
	maxSize int
	ttl     time.Duration
	hits    uint64
	misses  uint64
	nowFunc func() time.Time // for testing
}

// NewResultCache creates a cache holding at most maxSize entries for ttl.
func NewResultCache(maxSize int, ttl time.Duration) *ResultCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{
		entries: make(map[string]*cacheEntry),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Get returns the cached result for key. Expired entries are removed on
// the spot and count as misses.
func (c *ResultCache) Get(key string) (task.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.nowFunc().Sub(entry.insertedAt) > c.ttl {
		c.misses++
		if ok {
			c.removeLocked(key)
		}
		return task.Result{}, false
	}

	c.lruList.MoveToFront(entry.element)
	c.hits++
	return entry.result, true
}

// Put stores a result, refreshing the entry when the key already exists
// and evicting the least recently used entry when full.
func (c *ResultCache) Put(key string, result task.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.result = result
		entry.insertedAt = c.nowFunc()
		c.lruList.MoveToFront(entry.element)
		return
	}

	if c.lruList.Len() >= c.maxSize {
		if back := c.lruList.Back(); back != nil {
			c.removeLocked(back.Value.(string))
		}
	}

	entry := &cacheEntry{
		key:        key,
		result:     result,
		insertedAt: c.nowFunc(),
	}
	entry.element = c.lruList.PushFront(key)
	c.entries[key] = entry
}

// Clear drops every entry.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.lruList.Init()
}

// Len reports the current entry count.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

// Stats reports cumulative hit and miss counts.
func (c *ResultCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// SetNowFunc overrides the time source (for testing).
func (c *ResultCache) SetNowFunc(fn func() time.Time) {
	c.mu.Lock()
	c.nowFunc = fn
	c.mu.Unlock()
}

func (c *ResultCache) removeLocked(key string) {
	if entry, ok := c.entries[key]; ok {
		c.lruList.Remove(entry.element)
		delete(c.entries, key)
	}
}
