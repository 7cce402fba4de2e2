// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

// Package provider defines the adapter contract that normalizes each AI
// backend's distinct request/response shape into one interface, plus the
// descriptor type the orchestrator registers providers under.
package provider

import (
	"context"

	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

// Adapter is the capability-set interface every backend implements. An
// adapter only needs to do real work for the kinds its Capabilities()
// declares; Invoke rejects the rest before the adapter is reached.
//
// Available is a quick probe (feature detection for the on-device engine,
// a lightweight authenticated request for remote backends). It must not
// panic and reports false on any failure.
type Adapter interface {
	Name() string
	Capabilities() task.KindSet
	Available(ctx context.Context) bool

	Summarize(ctx context.Context, req task.Request) (task.Output, error)
	AnswerQuestion(ctx context.Context, req task.Request) (task.Output, error)
	Translate(ctx context.Context, req task.Request) (task.Output, error)
	AnalyzeSentiment(ctx context.Context, req task.Request) (task.Output, error)
}

// Descriptor is the registration record for one provider. Immutable after
// registration.
type Descriptor struct {
	Name        string
	DisplayName string
	Adapter     Adapter
}

// Capabilities returns the adapter's declared capability set.
func (d Descriptor) Capabilities() task.KindSet {
	return d.Adapter.Capabilities()
}

// Invoke dispatches a request to the adapter method matching its kind.
// Kinds outside the adapter's capability set fail without touching the
// backend.
func Invoke(ctx context.Context, a Adapter, req task.Request) (task.Output, error) {
	if !a.Capabilities().Has(req.Kind) {
		return task.Output{}, lenserr.New(
			lenserr.CodeTaskKindUnsupported,
			"provider does not support task kind",
			lenserr.FieldProvider(a.Name()),
			lenserr.FieldTask(string(req.Kind)),
		)
	}

	switch req.Kind {
	case task.KindSummarize:
		return a.Summarize(ctx, req)
	case task.KindAnswerQuestion:
		return a.AnswerQuestion(ctx, req)
	case task.KindTranslate:
		return a.Translate(ctx, req)
	case task.KindAnalyzeSentiment:
		return a.AnalyzeSentiment(ctx, req)
	default:
		return task.Output{}, lenserr.Errorf(lenserr.CodeTaskKindUnsupported, "unknown task kind %q", string(req.Kind))
	}
}
