// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package orchestrator

import (
	"sync"
	"time"

	"github.com/pagelens/pagelens/pkg/health"
)

// Alpha is the smoothing factor of the success-rate exponential moving
// average. One failure from a perfect record drops the rate to 0.9; seven
// consecutive failures cross the 0.5 healthy threshold.
const Alpha = 0.1

// HealthTracker owns one health record per registered provider. Records
// are created at registration, updated on every probe and every real call
// outcome, and never deleted.
type HealthTracker struct {
	mu      sync.RWMutex
	records map[string]*health.Record
	nowFunc func() time.Time // for testing
}

// NewHealthTracker creates an empty tracker.
func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		records: make(map[string]*health.Record),
		nowFunc: time.Now,
	}
}

// Register creates the provider's record. The success rate starts at 1.0
// so a fresh provider is trusted until it proves otherwise; availability
// starts false until the first probe lands.
func (t *HealthTracker) Register(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.records[name]; ok {
		return
	}
	t.records[name] = &health.Record{SuccessRate: 1.0}
}

// UpdateHealth folds one call outcome into the provider's record:
// EMA success rate, most recent latency, and the check timestamp.
func (t *HealthTracker) UpdateHealth(name string, success bool, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[name]
	if !ok {
		return
	}

	rec.SuccessRate = rec.SuccessRate * (1 - Alpha)
	if success {
		rec.SuccessRate += Alpha
	}
	rec.ResponseTimeMs = latency.Milliseconds()
	rec.LastCheckedAt = t.nowFunc()
}

// SetAvailability records a probe outcome.
func (t *HealthTracker) SetAvailability(name string, available bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[name]
	if !ok {
		return
	}
	rec.Available = available
	rec.LastCheckedAt = t.nowFunc()
}

// IsHealthy reports whether the provider is currently usable: available,
// success rate above 0.5, and checked within the staleness window.
func (t *HealthTracker) IsHealthy(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.records[name]
	if !ok {
		return false
	}
	return rec.Healthy(t.nowFunc())
}

// Record returns a copy of the provider's record.
func (t *HealthTracker) Record(name string) (health.Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.records[name]
	if !ok {
		return health.Record{}, false
	}
	return *rec, true
}

// Snapshot returns copies of all records keyed by provider name.
func (t *HealthTracker) Snapshot() map[string]health.Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]health.Record, len(t.records))
	for name, rec := range t.records {
		out[name] = *rec
	}
	return out
}

// SetNowFunc overrides the time source (for testing).
func (t *HealthTracker) SetNowFunc(fn func() time.Time) {
	t.mu.Lock()
	t.nowFunc = fn
	t.mu.Unlock()
}
