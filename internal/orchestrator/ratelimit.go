// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/pagelens/pagelens/internal/task"
)

// RateLimit caps admissions for one operation category to Limit requests
// per trailing Window.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// DefaultRateLimits mirrors the extension's per-category caps: summaries
// are cheap and frequent, question answering is the most expensive call.
func DefaultRateLimits() map[task.Kind]RateLimit {
	return map[task.Kind]RateLimit{
		task.KindSummarize:        {Limit: 60, Window: time.Minute},
		task.KindAnswerQuestion:   {Limit: 10, Window: time.Minute},
		task.KindTranslate:        {Limit: 15, Window: time.Minute},
		task.KindAnalyzeSentiment: {Limit: 15, Window: time.Minute},
	}
}

// RateLimiter applies sliding-window admission control, one independent
// window per operation category. Admit never refuses a request; when the
// window is full it suspends the caller until the oldest timestamp ages
// out, then rechecks. Callers needing bounded latency pass a context with
// a deadline.
type RateLimiter struct {
	mu      sync.Mutex
	limits  map[task.Kind]RateLimit
	windows map[task.Kind][]time.Time

	nowFunc   func() time.Time                                  // for testing
	sleepFunc func(ctx context.Context, d time.Duration) error // for testing
}

// NewRateLimiter creates a limiter with the given per-category limits.
// Categories without a limit admit immediately.
func NewRateLimiter(limits map[task.Kind]RateLimit) *RateLimiter {
	return &RateLimiter{
		limits:    limits,
		windows:   make(map[task.Kind][]time.Time),
		nowFunc:   time.Now,
		sleepFunc: sleepCtx,
	}
}

// Admit blocks until the category has a free slot, then records the
// admission. The only error path is context cancellation while waiting.
func (l *RateLimiter) Admit(ctx context.Context, kind task.Kind) error {
	for {
		wait, ok := l.tryAdmit(kind)
		if ok {
			return nil
		}
		if err := l.sleepFunc(ctx, wait); err != nil {
			return err
		}
	}
}

// tryAdmit prunes the window and either records an admission or returns
// how long to wait for the oldest timestamp to exit the window.
func (l *RateLimiter) tryAdmit(kind task.Kind) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit, ok := l.limits[kind]
	if !ok || limit.Limit <= 0 {
		return 0, true
	}

	now := l.nowFunc()
	cutoff := now.Add(-limit.Window)

	window := l.windows[kind]
	pruned := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			pruned = append(pruned, ts)
		}
	}

	if len(pruned) >= limit.Limit {
		wait := pruned[0].Add(limit.Window).Sub(now)
		if wait <= 0 {
			wait = time.Millisecond
		}
		l.windows[kind] = pruned
		return wait, false
	}

	l.windows[kind] = append(pruned, now)
	return 0, true
}

// sleepCtx waits for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
