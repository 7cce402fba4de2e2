// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/pagelens/pagelens/internal/config"
	"github.com/pagelens/pagelens/internal/secrets"
	"github.com/pagelens/pagelens/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the PageLens service",
		Long:  "Load configuration, register providers, and serve the local HTTP API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(cfgPath, secrets.NewKeyringStore())
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go orch.StartHealthLoop(ctx, cfg.Health.RefreshInterval)

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Server.Listen,
		CORSOrigins: cfg.Server.AllowedOrigins,
	}, orch)
	if err != nil {
		return err
	}

	slog.Info("pagelens serving", "listen", cfg.Server.Listen, "version", version)
	return srv.Start(ctx)
}
