// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pagelens/pagelens/internal/provider"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

const (
	defaultModel = "claude-haiku-4-5"
	probeURL     = "https://api.anthropic.com/v1/models"

	// Confidence reported for normalized outputs. The Messages API does
	// not expose a calibrated confidence, so this is a fixed estimate.
	confidence = 0.9
)

// Config holds Anthropic adapter configuration.
type Config struct {
	APIKey   string
	BaseURL  string // optional, useful for testing against a mock server
	Model    string // defaults to defaultModel
	ProbeURL string // optional probe override for tests
}

// Adapter implements provider.Adapter using the Anthropic Messages API.
type Adapter struct {
	client     anthropicsdk.Client
	httpClient *http.Client
	config     Config
	model      string
}

var _ provider.Adapter = (*Adapter)(nil)

// New creates an Anthropic adapter. Returns an error if the API key is missing.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, lenserr.New(lenserr.CodeProviderKeyInvalid, "anthropic: missing api_key in config", lenserr.FieldProvider("anthropic"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Adapter{
		client:     anthropicsdk.NewClient(opts...),
		httpClient: &http.Client{},
		config:     cfg,
		model:      model,
	}, nil
}

func (a *Adapter) Name() string { return "anthropic" }

func (a *Adapter) Capabilities() task.KindSet {
	return task.NewKindSet(task.KindSummarize, task.KindAnswerQuestion, task.KindTranslate, task.KindAnalyzeSentiment)
}

// Available makes a lightweight authenticated request against the models
// endpoint. It never panics; any failure reports false.
func (a *Adapter) Available(ctx context.Context) bool {
	url := probeURL
	if a.config.ProbeURL != "" {
		url = a.config.ProbeURL
	}
	err := provider.ProbeEndpoint(ctx, a.httpClient, url, map[string]string{
		"x-api-key":         a.config.APIKey,
		"anthropic-version": "2023-06-01",
	})
	return err == nil
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

// complete issues one non-streaming Messages call and normalizes the
// response envelope.
func (a *Adapter) complete(ctx context.Context, req task.Request) (task.Output, error) {
	prompt := provider.BuildPrompt(req)

	msgs := make([]anthropicsdk.MessageParam, 0, len(prompt.History)+1)
	for _, m := range prompt.History {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(m.Content)))
		default:
			msgs = append(msgs, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(m.Content)))
		}
	}
	msgs = append(msgs, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt.User)))

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(a.model),
		Messages:  msgs,
		MaxTokens: 2048,
		System: []anthropicsdk.TextBlockParam{
			{Text: prompt.System},
		},
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return task.Output{}, wrapCallErr(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return task.Output{}, lenserr.New(lenserr.CodeProviderResponseInvalid, "anthropic: response contained no text content", lenserr.FieldProvider("anthropic"))
	}

	return task.Output{
		Text:       text,
		Confidence: confidence,
		Usage: task.Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

// wrapCallErr maps an SDK error to the shared provider error shape,
// preserving the upstream HTTP status when the SDK exposes one.
func wrapCallErr(err error) error {
	var apierr *anthropicsdk.Error
	if errors.As(err, &apierr) {
		return lenserr.Wrap(err, lenserr.CodeProviderUpstreamFailure, "anthropic: messages call failed",
			lenserr.FieldProvider("anthropic"),
			lenserr.FieldHTTPStatus(apierr.StatusCode),
		)
	}
	return lenserr.Wrap(err, lenserr.CodeProviderUpstreamFailure, "anthropic: messages call failed",
		lenserr.FieldProvider("anthropic"))
}
