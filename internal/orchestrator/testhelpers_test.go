// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package orchestrator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pagelens/pagelens/internal/orchestrator"
	"github.com/pagelens/pagelens/internal/provider"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

// stubAdapter is a scriptable provider for orchestrator tests. It echoes
// the request so results are attributable, and can be told to fail its
// first N calls.
type stubAdapter struct {
	name      string
	caps      task.KindSet
	available bool

	mu       sync.Mutex
	failNext int // fail this many calls before succeeding
	calls    int
}

func newStubAdapter(name string) *stubAdapter {
	return &stubAdapter{
		name:      name,
		caps:      task.NewKindSet(task.Kinds()...),
		available: true,
	}
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Capabilities() task.KindSet { return s.caps }

func (s *stubAdapter) Available(context.Context) bool { return s.available }

func (s *stubAdapter) Summarize(_ context.Context, req task.Request) (task.Output, error) {
	return s.reply("SUMMARY: " + req.Text)
}

func (s *stubAdapter) AnswerQuestion(_ context.Context, req task.Request) (task.Output, error) {
	return s.reply("ANSWER: " + req.Options.Question)
}

func (s *stubAdapter) Translate(_ context.Context, req task.Request) (task.Output, error) {
	return s.reply("TRANSLATED[" + req.Options.TargetLanguage + "]: " + req.Text)
}

func (s *stubAdapter) AnalyzeSentiment(_ context.Context, req task.Request) (task.Output, error) {
	_ = req
	return s.reply("neutral")
}

func (s *stubAdapter) reply(text string) (task.Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.shouldFailLocked() {
		return task.Output{}, lenserr.New(lenserr.CodeProviderUpstreamFailure, s.name+" is down", lenserr.FieldProvider(s.name))
	}
	return task.Output{Text: text, Confidence: 0.9, Usage: task.Usage{InputTokens: 10, OutputTokens: 5}}, nil
}

func (s *stubAdapter) shouldFailLocked() bool {
	if s.failNext > 0 {
		s.failNext--
		return true
	}
	return false
}

// setFailures scripts the next n calls to fail.
func (s *stubAdapter) setFailures(n int) {
	s.mu.Lock()
	s.failNext = n
	s.mu.Unlock()
}

func (s *stubAdapter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// newTestOrchestrator builds an orchestrator with instant sleeps and the
// given adapters registered and marked available.
func newTestOrchestrator(t *testing.T, cfg orchestrator.Config, adapters ...*stubAdapter) *orchestrator.Orchestrator {
	t.Helper()

	o := orchestrator.New(cfg)
	o.SetSleepFunc(func(context.Context, time.Duration) error { return nil })

	for _, a := range adapters {
		if err := o.RegisterProvider(provider.Descriptor{Name: a.name, DisplayName: a.name, Adapter: a}); err != nil {
			t.Fatalf("registering %s: %v", a.name, err)
		}
		// Registration probes asynchronously; set availability directly
		// so tests do not depend on goroutine timing.
		o.Tracker().SetAvailability(a.name, a.available)
	}
	return o
}
