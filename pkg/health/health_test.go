// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package health_test

import (
	"testing"
	"time"

	"github.com/pagelens/pagelens/pkg/health"
	"github.com/stretchr/testify/assert"
)

func TestRecord_Healthy(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  health.Record
		want bool
	}{
		{
			name: "available, trusted, fresh",
			rec:  health.Record{Available: true, SuccessRate: 1.0, LastCheckedAt: now.Add(-time.Minute)},
			want: true,
		},
		{
			name: "unavailable",
			rec:  health.Record{Available: false, SuccessRate: 1.0, LastCheckedAt: now.Add(-time.Minute)},
			want: false,
		},
		{
			name: "success rate exactly at threshold",
			rec:  health.Record{Available: true, SuccessRate: 0.5, LastCheckedAt: now.Add(-time.Minute)},
			want: false,
		},
		{
			name: "success rate just above threshold",
			rec:  health.Record{Available: true, SuccessRate: 0.51, LastCheckedAt: now.Add(-time.Minute)},
			want: true,
		},
		{
			name: "stale check",
			rec:  health.Record{Available: true, SuccessRate: 1.0, LastCheckedAt: now.Add(-health.StaleAfter)},
			want: false,
		},
		{
			name: "never checked",
			rec:  health.Record{Available: true, SuccessRate: 1.0},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Healthy(now))
		})
	}
}
