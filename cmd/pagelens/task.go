// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pagelens/pagelens/internal/task"
	"github.com/spf13/cobra"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Run a page-analysis task against the local service",
	}

	cmd.PersistentFlags().String("address", defaultAddress, "service address")
	cmd.PersistentFlags().String("provider", "", "force a specific provider")

	cmd.AddCommand(
		newSummarizeCmd(),
		newAnswerCmd(),
		newTranslateCmd(),
		newSentimentCmd(),
	)

	return cmd
}

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [text]",
		Short: "Summarize page text (reads stdin when no argument given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, _ := cmd.Flags().GetString("style")
			length, _ := cmd.Flags().GetInt("length")
			return runTask(cmd, args, task.KindSummarize, task.Options{
				SummaryType:   style,
				SummaryLength: length,
			})
		},
	}
	cmd.Flags().String("style", "", "summary style: brief, detailed, or bullets")
	cmd.Flags().Int("length", 0, "approximate summary length in words")
	return cmd
}

func newAnswerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "answer [text]",
		Short: "Answer a question about page text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question, _ := cmd.Flags().GetString("question")
			return runTask(cmd, args, task.KindAnswerQuestion, task.Options{
				Question: question,
			})
		},
	}
	cmd.Flags().StringP("question", "q", "", "question to answer (required)")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

func newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate page text to a target language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, _ := cmd.Flags().GetString("to")
			return runTask(cmd, args, task.KindTranslate, task.Options{
				TargetLanguage: lang,
			})
		},
	}
	cmd.Flags().String("to", "", "target language (required)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newSentimentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sentiment [text]",
		Short: "Classify page text sentiment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd, args, task.KindAnalyzeSentiment, task.Options{})
		},
	}
}

// runTask submits one request to the service and prints the result text.
// Routing details go to stderr under --verbose so stdout stays pipeable.
func runTask(cmd *cobra.Command, args []string, kind task.Kind, opts task.Options) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("address")
	providerName, _ := cmd.Flags().GetString("provider")

	req := task.Request{
		Kind:     kind,
		Text:     text,
		Options:  opts,
		Provider: providerName,
	}

	var result task.Result
	if err := newServiceClient(addr).postJSON("/v1/tasks", req, &result); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), result.Text); err != nil {
		return err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "provider=%s cached=%t latency=%dms confidence=%.2f\n",
			result.Provider, result.FromCache, result.LatencyMs, result.Confidence)
	}
	return nil
}

// readText returns the positional argument, or all of stdin when absent.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
