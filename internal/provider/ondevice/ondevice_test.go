// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package ondevice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pagelens/pagelens/internal/provider/ondevice"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine scripts the local runtime.
type fakeEngine struct {
	ready bool
	reply string
	err   error

	lastSystem string
	lastUser   string
}

func (e *fakeEngine) Ready(context.Context) bool { return e.ready }

func (e *fakeEngine) Prompt(_ context.Context, system, user string) (string, error) {
	e.lastSystem = system
	e.lastUser = user
	return e.reply, e.err
}

func TestAdapter_NilEngineUnavailable(t *testing.T) {
	a := ondevice.New(nil)
	ctx := context.Background()

	assert.False(t, a.Available(ctx))

	_, err := a.Summarize(ctx, task.Request{Kind: task.KindSummarize, Text: "page"})
	require.Error(t, err)
	assert.True(t, lenserr.IsUpstreamFailure(err))
}

func TestAdapter_AvailabilityFollowsEngine(t *testing.T) {
	engine := &fakeEngine{ready: false}
	a := ondevice.New(engine)
	ctx := context.Background()

	assert.False(t, a.Available(ctx))
	engine.ready = true
	assert.True(t, a.Available(ctx))
}

func TestAdapter_SummarizePromptsEngine(t *testing.T) {
	engine := &fakeEngine{ready: true, reply: "a short summary"}
	a := ondevice.New(engine)

	out, err := a.Summarize(context.Background(), task.Request{
		Kind: task.KindSummarize,
		Text: "page body",
	})
	require.NoError(t, err)

	assert.Equal(t, "a short summary", out.Text)
	assert.Equal(t, 0.7, out.Confidence)
	assert.NotEmpty(t, engine.lastSystem)
	assert.Contains(t, engine.lastUser, "page body")
}

func TestAdapter_TranslateUnsupported(t *testing.T) {
	a := ondevice.New(&fakeEngine{ready: true, reply: "Seite"})

	assert.False(t, a.Capabilities().Has(task.KindTranslate))

	_, err := a.Translate(context.Background(), task.Request{
		Kind:    task.KindTranslate,
		Text:    "page",
		Options: task.Options{TargetLanguage: "de"},
	})
	require.Error(t, err)
	assert.True(t, lenserr.IsUnsupported(err))
}

func TestAdapter_SentimentNormalized(t *testing.T) {
	engine := &fakeEngine{ready: true, reply: "Positive."}
	a := ondevice.New(engine)

	out, err := a.AnalyzeSentiment(context.Background(), task.Request{
		Kind: task.KindAnalyzeSentiment,
		Text: "great page",
	})
	require.NoError(t, err)
	assert.Equal(t, "positive", out.Text)
}

func TestAdapter_EngineErrors(t *testing.T) {
	t.Run("prompt failure wrapped", func(t *testing.T) {
		a := ondevice.New(&fakeEngine{ready: true, err: errors.New("model crashed")})

		_, err := a.Summarize(context.Background(), task.Request{Kind: task.KindSummarize, Text: "page"})
		require.Error(t, err)
		assert.True(t, lenserr.IsUpstreamFailure(err))
	})

	t.Run("empty output rejected", func(t *testing.T) {
		a := ondevice.New(&fakeEngine{ready: true, reply: ""})

		_, err := a.Summarize(context.Background(), task.Request{Kind: task.KindSummarize, Text: "page"})
		require.Error(t, err)
		assert.True(t, lenserr.HasCode(err, lenserr.CodeProviderResponseInvalid))
	})
}
