// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// defaultAddress is where a locally running service listens unless
// configured otherwise. Client commands dial it by default.
const defaultAddress = "127.0.0.1:18910"

// NewRootCmd creates the root pagelens command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pagelens",
		Short:         "PageLens — local AI companion service for the browser extension",
		Long:          "PageLens runs a local HTTP service that routes page-analysis tasks (summaries, Q&A, translation, sentiment) across configured AI providers with health tracking, fallback, and caching.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			initLogging(verbose)
			return nil
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newInitCmd(),
		newServeCmd(),
		newStatusCmd(),
		newTaskCmd(),
		newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// initLogging configures the process-wide slog default. Verbose enables
// debug-level records, which include per-probe health output.
func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
