// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package orchestrator

import "sync"

// loadBalancer picks among ranked candidates by least outstanding
// requests, so a temporarily stale high score cannot funnel every request
// to one provider. Ties go to the highest-ranked candidate.
type loadBalancer struct {
	mu          sync.Mutex
	outstanding map[string]int
}

func newLoadBalancer() *loadBalancer {
	return &loadBalancer{outstanding: make(map[string]int)}
}

// Acquire picks the candidate with the fewest outstanding dispatches and
// increments its counter. The ranked slice must be non-empty.
func (b *loadBalancer) Acquire(ranked []Candidate) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	pick := ranked[0].Name
	min := b.outstanding[pick]
	for _, c := range ranked[1:] {
		if n := b.outstanding[c.Name]; n < min {
			pick = c.Name
			min = n
		}
	}

	b.outstanding[pick]++
	return pick
}

// Release marks one dispatch to the provider as finished.
func (b *loadBalancer) Release(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.outstanding[name] > 0 {
		b.outstanding[name]--
	}
}

// Outstanding reports the provider's in-flight count.
func (b *loadBalancer) Outstanding(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding[name]
}
