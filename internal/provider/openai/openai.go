// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/pagelens/pagelens/internal/provider"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

const (
	defaultModel = "gpt-4.1-mini"
	probeURL     = "https://api.openai.com/v1/models"

	confidence = 0.9
)

// Config holds OpenAI adapter configuration.
type Config struct {
	APIKey   string
	BaseURL  string // optional, useful for testing against a mock server
	Model    string // defaults to defaultModel
	ProbeURL string // optional probe override for tests
}

// Adapter implements provider.Adapter using the OpenAI Chat Completions API.
type Adapter struct {
	client     openaisdk.Client
	httpClient *http.Client
	config     Config
	model      string
}

var _ provider.Adapter = (*Adapter)(nil)

// New creates an OpenAI adapter. Returns an error if the API key is missing.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, lenserr.New(lenserr.CodeProviderKeyInvalid, "openai: missing api_key in config", lenserr.FieldProvider("openai"))
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
		client:     openaisdk.NewClient(opts...),
		httpClient: &http.Client{},
		config:     cfg,
		model:      model,
	}, nil
}

func (a *Adapter) Name() string { return "openai" }

func (a *Adapter) Capabilities() task.KindSet {
	return task.NewKindSet(task.KindSummarize, task.KindAnswerQuestion, task.KindTranslate, task.KindAnalyzeSentiment)
}

func (a *Adapter) Available(ctx context.Context) bool {
	url := probeURL
	if a.config.ProbeURL != "" {
		url = a.config.ProbeURL
	}
	err := provider.ProbeEndpoint(ctx, a.httpClient, url, map[string]string{
		"Authorization": "Bearer " + a.config.APIKey,
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

// complete issues one non-streaming chat completion and parses the
// choice-based response envelope.
func (a *Adapter) complete(ctx context.Context, req task.Request) (task.Output, error) {
	prompt := provider.BuildPrompt(req)

	msgs := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(prompt.History)+2)
	msgs = append(msgs, openaisdk.SystemMessage(prompt.System))
	for _, m := range prompt.History {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openaisdk.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openaisdk.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openaisdk.UserMessage(prompt.User))

	completion, err := a.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(a.model),
		Messages: msgs,
	})
	if err != nil {
		return task.Output{}, wrapCallErr(err)
	}

	if len(completion.Choices) == 0 {
		return task.Output{}, lenserr.New(lenserr.CodeProviderResponseInvalid, "openai: response contained no choices", lenserr.FieldProvider("openai"))
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return task.Output{}, lenserr.New(lenserr.CodeProviderResponseInvalid, "openai: response choice contained no text", lenserr.FieldProvider("openai"))
	}

	return task.Output{
		Text:       text,
		Confidence: confidence,
		Usage: task.Usage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
		},
	}, nil
}

func wrapCallErr(err error) error {
	var apierr *openaisdk.Error
	if errors.As(err, &apierr) {
		return lenserr.Wrap(err, lenserr.CodeProviderUpstreamFailure, "openai: chat completion failed",
			lenserr.FieldProvider("openai"),
			lenserr.FieldHTTPStatus(apierr.StatusCode),
		)
	}
	return lenserr.Wrap(err, lenserr.CodeProviderUpstreamFailure, "openai: chat completion failed",
		lenserr.FieldProvider("openai"))
}
