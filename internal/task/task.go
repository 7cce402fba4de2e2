// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

// Package task defines the normalized request/result model shared by the
// orchestrator, the provider adapters, and the local HTTP API.
package task

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

// Kind identifies one of the supported page-AI operations.
type Kind string

const (
	KindSummarize        Kind = "summarize"
	KindAnswerQuestion   Kind = "answer_question"
	KindTranslate        Kind = "translate"
	KindAnalyzeSentiment Kind = "analyze_sentiment"
)

// Kinds lists every supported task kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindSummarize, KindAnswerQuestion, KindTranslate, KindAnalyzeSentiment}
}

// Valid reports whether k is a known task kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSummarize, KindAnswerQuestion, KindTranslate, KindAnalyzeSentiment:
		return true
	}
	return false
}

// KindSet is the capability set of a provider: which task kinds it serves.
type KindSet map[Kind]bool

// NewKindSet builds a KindSet from the given kinds.
func NewKindSet(kinds ...Kind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

// Has reports whether the set includes k.
func (s KindSet) Has(k Kind) bool { return s[k] }

// Message is one turn of prior conversation carried with an
// answer_question request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options carries the task-specific knobs of a request. Fields that do not
// apply to the request's kind are ignored.
type Options struct {
	// SummaryType is one of "brief", "detailed", "bullets". Empty means brief.
	SummaryType string `json:"summary_type,omitempty"`
	// SummaryLength is a soft word target for the summary. Zero means
	// the provider default.
	SummaryLength int `json:"summary_length,omitempty"`
	// Question is the user's question for answer_question.
	Question string `json:"question,omitempty"`
	// TargetLanguage is the BCP-47 tag or plain name for translate.
	TargetLanguage string `json:"target_language,omitempty"`
	// History is prior conversation context for answer_question.
	History []Message `json:"history,omitempty"`
}

// Request is one unit of work for the orchestrator.
type Request struct {
	// ID correlates logs and results; assigned by the caller (the HTTP
	// layer generates one when absent).
	ID      string  `json:"id,omitempty"`
	Kind    Kind    `json:"kind"`
	Text    string  `json:"text"`
	Options Options `json:"options"`
	// Provider, when set, restricts execution to the named provider.
	Provider string `json:"provider,omitempty"`
}

// Usage records token consumption reported by a provider, when known.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Output is what a single adapter call produces before the orchestrator
// decorates it with routing metadata.
type Output struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Usage      Usage   `json:"usage"`
}

// Result is the orchestrator's answer to a Request.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Provider   string  `json:"provider"`
	FromCache  bool    `json:"from_cache"`
	LatencyMs  int64   `json:"latency_ms"`
	Usage      Usage   `json:"usage"`
}

// Validate checks the request before any provider interaction. It fails
// fast so malformed requests never consume a rate-limit slot or a retry.
func (r Request) Validate() error {
	if !r.Kind.Valid() {
		return lenserr.Errorf(lenserr.CodeTaskInvalidInput, "unknown task kind %q", string(r.Kind))
	}
	if strings.TrimSpace(r.Text) == "" {
		return lenserr.New(lenserr.CodeTaskInvalidInput, "task text must not be empty", lenserr.FieldTask(string(r.Kind)))
	}

	switch r.Kind {
	case KindAnswerQuestion:
		if strings.TrimSpace(r.Options.Question) == "" {
			return lenserr.New(lenserr.CodeTaskInvalidInput, "answer_question requires options.question", lenserr.FieldTask(string(r.Kind)))
		}
	case KindTranslate:
		if strings.TrimSpace(r.Options.TargetLanguage) == "" {
			return lenserr.New(lenserr.CodeTaskInvalidInput, "translate requires options.target_language", lenserr.FieldTask(string(r.Kind)))
		}
	}

	return nil
}

// CacheKey derives a deterministic key from the kind and the normalized
// payload fields. Identical requests within the cache TTL therefore share
// one entry. The per-call provider override is excluded on purpose: the
// cached result is valid regardless of which provider produced it.
func (r Request) CacheKey() string {
	h := sha256.New()
	h.Write([]byte(string(r.Kind)))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(r.Text)))
	h.Write([]byte{0})
	h.Write([]byte(r.Options.SummaryType))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(r.Options.SummaryLength)))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(r.Options.Question)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(r.Options.TargetLanguage))))
	for _, m := range r.Options.History {
		h.Write([]byte{0})
		h.Write([]byte(m.Role))
		h.Write([]byte{1})
		h.Write([]byte(m.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}
