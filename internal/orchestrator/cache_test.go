// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package orchestrator_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/pagelens/pagelens/internal/orchestrator"
	"github.com/pagelens/pagelens/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_PutGet(t *testing.T) {
	c := orchestrator.NewResultCache(10, time.Minute)

	c.Put("k1", task.Result{Text: "summary", Provider: "anthropic"})

	got, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "summary", got.Text)
	assert.Equal(t, "anthropic", got.Provider)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestResultCache_TTLExpiry(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	c := orchestrator.NewResultCache(10, 10*time.Minute)
	c.SetNowFunc(func() time.Time { return now })

	c.Put("k1", task.Result{Text: "fresh"})

	// Just inside the TTL the entry is served.
	now = now.Add(10 * time.Minute)
	_, ok := c.Get("k1")
	assert.True(t, ok)

	// Past the TTL the entry is dropped on lookup and counts as a miss.
	now = now.Add(time.Second)
	_, ok = c.Get("k1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestResultCache_LRUEviction(t *testing.T) {
	c := orchestrator.NewResultCache(3, time.Minute)

	c.Put("a", task.Result{Text: "a"})
	c.Put("b", task.Result{Text: "b"})
	c.Put("c", task.Result{Text: "c"})

	// Touch "a" so "b" becomes the least recently used.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("d", task.Result{Text: "d"})

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, key)
	}
	assert.Equal(t, 3, c.Len())
}

func TestResultCache_PutRefreshesExisting(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	c := orchestrator.NewResultCache(10, 10*time.Minute)
	c.SetNowFunc(func() time.Time { return now })

	c.Put("k1", task.Result{Text: "old"})

	now = now.Add(9 * time.Minute)
	c.Put("k1", task.Result{Text: "new"})
	assert.Equal(t, 1, c.Len())

	// The refresh restarted the TTL, so the entry survives past the
	// original deadline.
	now = now.Add(9 * time.Minute)
	got, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "new", got.Text)
}

func TestResultCache_Clear(t *testing.T) {
	c := orchestrator.NewResultCache(10, time.Minute)

	for i := 0; i < 5; i++ {
		c.Put("k"+strconv.Itoa(i), task.Result{})
	}
	require.Equal(t, 5, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("k0")
	assert.False(t, ok)
}
