// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package orchestrator

import (
	"context"
	"time"
)

// DefaultRetryBase is the backoff unit: attempt n waits 2^n × base before
// the next try.
const DefaultRetryBase = time.Second

// RetryExecutor wraps a single provider call with bounded
// exponential-backoff retry. Every failure class is retried identically —
// a 401 burns the same attempt budget as a network blip. That matches the
// extension's observed behavior; distinguishing permanent errors is a
// known refinement, deliberately not taken here.
type RetryExecutor struct {
	base      time.Duration
	sleepFunc func(ctx context.Context, d time.Duration) error // for testing
}

// NewRetryExecutor creates an executor with the given backoff base.
func NewRetryExecutor(base time.Duration) *RetryExecutor {
	if base <= 0 {
		base = DefaultRetryBase
	}
	return &RetryExecutor{base: base, sleepFunc: sleepCtx}
}

// Run invokes fn up to maxAttempts times, sleeping 2^attempt × base
// between failures, and returns the last error once the budget is
// exhausted. Context cancellation during backoff aborts early.
func (r *RetryExecutor) Run(ctx context.Context, maxAttempts int, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := r.base << (attempt - 1)
			if err := r.sleepFunc(ctx, backoff); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}
