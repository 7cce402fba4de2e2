// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package google

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/pagelens/pagelens/internal/provider"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

const (
	defaultModel = "gemini-2.5-flash"

	confidence = 0.9
)

// Config holds Google adapter configuration.
type Config struct {
	APIKey   string
	Model    string // defaults to defaultModel
	ProbeURL string // optional probe override for tests
}

// Adapter implements provider.Adapter using the Google Gemini API.
type Adapter struct {
	client     *genai.Client
	httpClient *http.Client
	config     Config
	model      string
}

var _ provider.Adapter = (*Adapter)(nil)

// New creates a Google adapter. Returns an error if the API key is missing
// or the SDK client cannot be constructed.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, lenserr.New(lenserr.CodeProviderKeyInvalid, "google: missing api_key in config", lenserr.FieldProvider("google"))
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, lenserr.Wrapf(err, lenserr.CodeProviderUpstreamFailure, "google: creating client")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Adapter{
		client:     client,
		httpClient: &http.Client{},
		config:     cfg,
		model:      model,
	}, nil
}

func (a *Adapter) Name() string { return "google" }

func (a *Adapter) Capabilities() task.KindSet {
	return task.NewKindSet(task.KindSummarize, task.KindAnswerQuestion, task.KindTranslate, task.KindAnalyzeSentiment)
}

// Available probes the Generative Language API models endpoint. Google
// authenticates via query parameter; there is no header-based alternative.
func (a *Adapter) Available(ctx context.Context) bool {
	url := a.config.ProbeURL
	if url == "" {
		url = "https://generativelanguage.googleapis.com/v1/models?key=" + a.config.APIKey
	}
	return provider.ProbeEndpoint(ctx, a.httpClient, url, nil) == nil
}

func (a *Adapter) Summarize(ctx context.Context, req task.Request) (task.Output, error) {
	return a.complete(ctx, req)
}

func (a *Adapter) AnswerQuestion(ctx context.Context, req task.Request) (task.Output, error) {
	return a.complete(ctx, req)
}

func (a *Adapter) Translate(ctx context.Context, req task.Request) (task.Output, error) {
	return a.complete(ctx, req)
}

func (a *Adapter) AnalyzeSentiment(ctx context.Context, req task.Request) (task.Output, error) {
	out, err := a.complete(ctx, req)
	if err != nil {
		return task.Output{}, err
	}
	out.Text = provider.NormalizeSentiment(out.Text)
	return out, nil
}

// complete issues one GenerateContent call and walks the candidate-based
// response envelope.
func (a *Adapter) complete(ctx context.Context, req task.Request) (task.Output, error) {
	prompt := provider.BuildPrompt(req)

	contents := make([]*genai.Content, 0, len(prompt.History)+1)
	for _, m := range prompt.History {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt.User}},
	})

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, cfg)
	if err != nil {
		return task.Output{}, wrapCallErr(err)
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		break // first candidate only
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return task.Output{}, lenserr.New(lenserr.CodeProviderResponseInvalid, "google: response contained no text candidates", lenserr.FieldProvider("google"))
	}

	out := task.Output{Text: text, Confidence: confidence}
	if resp.UsageMetadata != nil {
		out.Usage = task.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

func wrapCallErr(err error) error {
	var apierr genai.APIError
	if errors.As(err, &apierr) {
		return lenserr.Wrap(err, lenserr.CodeProviderUpstreamFailure, "google: generate content failed",
			lenserr.FieldProvider("google"),
			lenserr.FieldHTTPStatus(apierr.Code),
		)
	}
	return lenserr.Wrap(err, lenserr.CodeProviderUpstreamFailure, "google: generate content failed",
		lenserr.FieldProvider("google"))
}
