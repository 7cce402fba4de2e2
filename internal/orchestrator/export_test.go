// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package orchestrator

import (
	"context"
	"time"
)

// Test hooks. The virtual clock and sleep interceptors keep the timing
// tests deterministic and instant.

func (o *Orchestrator) Tracker() *HealthTracker { return o.tracker }

func (o *Orchestrator) Cache() *ResultCache { return o.cache }

// SetSleepFunc replaces the backoff and rate-limit sleeps.
func (o *Orchestrator) SetSleepFunc(fn func(ctx context.Context, d time.Duration) error) {
	o.retrier.sleepFunc = fn
	o.limiter.sleepFunc = fn
}

func (l *RateLimiter) SetNowFunc(fn func() time.Time) { l.nowFunc = fn }

func (l *RateLimiter) SetSleepFunc(fn func(ctx context.Context, d time.Duration) error) {
	l.sleepFunc = fn
}

func (r *RetryExecutor) SetSleepFunc(fn func(ctx context.Context, d time.Duration) error) {
	r.sleepFunc = fn
}
