// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package orchestrator

import (
	"sort"

	"github.com/pagelens/pagelens/internal/task"
	"github.com/pagelens/pagelens/pkg/health"
)

// latencyPenaltyCap bounds the latency term so one slow sample cannot
// drown out the success rate entirely.
const latencyPenaltyCap = 50.0

// AffinityTable holds static per-provider, per-task score bonuses
// reflecting known qualitative strengths. It is configuration, not
// something the orchestrator computes.
type AffinityTable map[string]map[task.Kind]float64

// Bonus returns the configured bonus, or zero when none is set.
func (t AffinityTable) Bonus(provider string, kind task.Kind) float64 {
	if t == nil {
		return 0
	}
	return t[provider][kind]
}

// Candidate is one healthy, capable provider with its ranking score.
type Candidate struct {
	Name  string
	Score float64
}

// scoreRecord ranks a provider for a task: success rate dominates, recent
// latency subtracts up to latencyPenaltyCap points, affinity nudges.
func scoreRecord(rec health.Record, bonus float64) float64 {
	penalty := float64(rec.ResponseTimeMs) / 100
	if penalty > latencyPenaltyCap {
		penalty = latencyPenaltyCap
	}
	return rec.SuccessRate*100 - penalty + bonus
}

// rank sorts candidates by score, highest first. Order is stable so equal
// scores keep registration order.
func rank(candidates []Candidate) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
