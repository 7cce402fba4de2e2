// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

// Package ondevice adapts a local inference engine to the provider
// contract. The engine itself is injected; this package only does feature
// detection and prompt plumbing, never inference.
package ondevice

import (
	"context"

	"github.com/pagelens/pagelens/internal/provider"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

// Local models are less reliable than the remote backends, reflected in a
// lower fixed confidence.
const confidence = 0.7

// Engine is the session API a local model runtime exposes. Ready is the
// feature-detection probe: it must be cheap and must not panic.
type Engine interface {
	Ready(ctx context.Context) bool
	Prompt(ctx context.Context, system, user string) (string, error)
}

// Adapter implements provider.Adapter over an injected Engine.
type Adapter struct {
	engine Engine
}

var _ provider.Adapter = (*Adapter)(nil)

// New wraps a local engine. A nil engine is allowed; the adapter just
// reports unavailable, matching a machine with no local model installed.
func New(engine Engine) *Adapter {
	return &Adapter{engine: engine}
}

func (a *Adapter) Name() string { return "ondevice" }

// Capabilities omits translate: the small local models produce unusable
// translations, so that task is remote-only.
func (a *Adapter) Capabilities() task.KindSet {
	return task.NewKindSet(task.KindSummarize, task.KindAnswerQuestion, task.KindAnalyzeSentiment)
}

func (a *Adapter) Available(ctx context.Context) bool {
	return a.engine != nil && a.engine.Ready(ctx)
}

func (a *Adapter) Summarize(ctx context.Context, req task.Request) (task.Output, error) {
	return a.prompt(ctx, req)
}

func (a *Adapter) AnswerQuestion(ctx context.Context, req task.Request) (task.Output, error) {
	return a.prompt(ctx, req)
}

func (a *Adapter) Translate(ctx context.Context, req task.Request) (task.Output, error) {
	return task.Output{}, lenserr.New(
		lenserr.CodeTaskKindUnsupported,
		"ondevice: translate is not supported",
		lenserr.FieldProvider(a.Name()),
		lenserr.FieldTask(string(task.KindTranslate)),
	)
}

func (a *Adapter) AnalyzeSentiment(ctx context.Context, req task.Request) (task.Output, error) {
	out, err := a.prompt(ctx, req)
	if err != nil {
		return task.Output{}, err
	}
	out.Text = provider.NormalizeSentiment(out.Text)
	return out, nil
}

func (a *Adapter) prompt(ctx context.Context, req task.Request) (task.Output, error) {
	if a.engine == nil {
		return task.Output{}, lenserr.New(lenserr.CodeProviderUpstreamFailure, "ondevice: no local engine configured", lenserr.FieldProvider(a.Name()))
	}

	p := provider.BuildPrompt(req)
	text, err := a.engine.Prompt(ctx, p.System, p.User)
	if err != nil {
		return task.Output{}, lenserr.Wrap(err, lenserr.CodeProviderUpstreamFailure, "ondevice: session prompt failed", lenserr.FieldProvider(a.Name()))
	}
	if text == "" {
		return task.Output{}, lenserr.New(lenserr.CodeProviderResponseInvalid, "ondevice: engine returned empty output", lenserr.FieldProvider(a.Name()))
	}

	return task.Output{Text: text, Confidence: confidence}, nil
}
