// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package health

import "time"

// Record is a point-in-time snapshot of a provider's health, safe to
// serialize to JSON for the status endpoint and CLI.
type Record struct {
	Available      bool      `json:"available"`
	LastCheckedAt  time.Time `json:"last_checked_at"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	SuccessRate    float64   `json:"success_rate"`
}

// StaleAfter is how long a record stays trustworthy without a fresh probe
// or call outcome. A provider whose record is older than this is treated
// as unhealthy until the next health refresh.
const StaleAfter = 5 * time.Minute

// Healthy reports whether the record describes a usable provider as of now:
// available, better-than-even success rate, and checked recently.
func (r Record) Healthy(now time.Time) bool {
	return r.Available && r.SuccessRate > 0.5 && now.Sub(r.LastCheckedAt) < StaleAfter
}
