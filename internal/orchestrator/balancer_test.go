// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadBalancer_TiesGoToHighestRanked(t *testing.T) {
	b := newLoadBalancer()
	ranked := []Candidate{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	assert.Equal(t, "a", b.Acquire(ranked))
}

func TestLoadBalancer_PicksLeastOutstanding(t *testing.T) {
	b := newLoadBalancer()
	ranked := []Candidate{{Name: "a"}, {Name: "b"}}

	// Two unreleased dispatches to "a" shift the next pick to "b".
	assert.Equal(t, "a", b.Acquire(ranked))
	assert.Equal(t, "b", b.Acquire(ranked))
	assert.Equal(t, "a", b.Acquire(ranked))
	assert.Equal(t, "b", b.Acquire(ranked))

	assert.Equal(t, 2, b.Outstanding("a"))
	assert.Equal(t, 2, b.Outstanding("b"))
}

func TestLoadBalancer_ReleaseFreesSlot(t *testing.T) {
	b := newLoadBalancer()
	ranked := []Candidate{{Name: "a"}, {Name: "b"}}

	assert.Equal(t, "a", b.Acquire(ranked))
	b.Release("a")

	// With both idle again, rank order decides.
	assert.Equal(t, "a", b.Acquire(ranked))
}

func TestLoadBalancer_ReleaseNeverGoesNegative(t *testing.T) {
	b := newLoadBalancer()

	b.Release("a")
	b.Release("a")
	assert.Equal(t, 0, b.Outstanding("a"))
}
