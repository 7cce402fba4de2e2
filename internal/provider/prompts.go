// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package provider

import (
	"fmt"
	"strings"

	"github.com/pagelens/pagelens/internal/task"
)

// Prompt is the provider-agnostic prompt a remote adapter renders into its
// backend's wire format. History is non-empty only for answer_question.
type Prompt struct {
	System  string
	User    string
	History []task.Message
}

const (
	summarizeSystem = "You summarize webpage content. Respond with the summary only, no preamble."
	answerSystem    = "You answer questions about webpage content. Base your answer strictly on the provided page text; say so when the page does not contain the answer."
	translateSystem = "You translate webpage content. Respond with the translation only, preserving paragraph structure."
	sentimentSystem = "You classify the sentiment of webpage content. Respond with exactly one word: positive, negative, or neutral."
)

// BuildPrompt renders a validated request into the shared prompt shape.
// Keeping this in one place keeps the three remote adapters' behavior
// consistent; only wire-format mapping differs per backend.
func BuildPrompt(req task.Request) Prompt {
	switch req.Kind {
	case task.KindSummarize:
		return Prompt{System: summarizeSystem, User: summarizeUser(req)}
	case task.KindAnswerQuestion:
		return Prompt{
			System:  answerSystem,
			User:    fmt.Sprintf("Page content:\n%s\n\nQuestion: %s", req.Text, req.Options.Question),
			History: req.Options.History,
		}
	case task.KindTranslate:
		return Prompt{
			System: translateSystem,
			User:   fmt.Sprintf("Translate the following into %s:\n\n%s", req.Options.TargetLanguage, req.Text),
		}
	case task.KindAnalyzeSentiment:
		return Prompt{System: sentimentSystem, User: req.Text}
	default:
		return Prompt{User: req.Text}
	}
}

func summarizeUser(req task.Request) string {
	var b strings.Builder
	switch req.Options.SummaryType {
	case "detailed":
		b.WriteString("Write a detailed summary")
	case "bullets":
		b.WriteString("Write a bullet-point summary")
	default:
		b.WriteString("Write a brief summary")
	}
	if req.Options.SummaryLength > 0 {
		fmt.Fprintf(&b, " of roughly %d words", req.Options.SummaryLength)
	}
	b.WriteString(" of the following page:\n\n")
	b.WriteString(req.Text)
	return b.String()
}

// NormalizeSentiment collapses a model's free-form sentiment reply to one
// of the three labels. Unrecognized replies pass through lowercased so the
// caller still sees what the model said.
func NormalizeSentiment(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.Trim(t, ".!\"'")
	switch {
	case strings.HasPrefix(t, "positive"):
		return "positive"
	case strings.HasPrefix(t, "negative"):
		return "negative"
	case strings.HasPrefix(t, "neutral"):
		return "neutral"
	}
	return t
}
