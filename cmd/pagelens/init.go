// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"

	lenserr "github.com/pagelens/pagelens/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// starterConfig is serialized as the initial pagelens.yaml. Keys mirror
// the mapstructure tags in internal/config.
type starterConfig struct {
	Server struct {
		Listen         string   `yaml:"listen"`
		AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
	} `yaml:"server"`
	Providers map[string]starterProvider `yaml:"providers"`
	Routing   struct {
		Preferred   string `yaml:"preferred,omitempty"`
		MaxAttempts int    `yaml:"max_attempts"`
	} `yaml:"routing"`
	Cache struct {
		TTL        string `yaml:"ttl"`
		MaxEntries int    `yaml:"max_entries"`
	} `yaml:"cache"`
}

type starterProvider struct {
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model,omitempty"`
	Enabled bool   `yaml:"enabled,omitempty"`
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long:  "Write a commented pagelens.yaml with placeholder provider entries. API keys may be literal values or keyring://service/key references.",
		RunE:  runInit,
	}

	cmd.Flags().StringP("output", "o", "pagelens.yaml", "path to write")
	cmd.Flags().Bool("force", false, "overwrite an existing file")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if !force {
		if _, err := os.Stat(path); err == nil {
			return lenserr.Errorf(lenserr.CodeCLISetupFailure, "%s already exists (use --force to overwrite)", path)
		}
	}

	cfg := starterConfig{
		Providers: map[string]starterProvider{
			"anthropic": {APIKey: "keyring://pagelens/anthropic"},
			"openai":    {APIKey: ""},
			"google":    {APIKey: ""},
			"ondevice":  {Enabled: false},
		},
	}
	cfg.Server.Listen = defaultAddress
	cfg.Routing.MaxAttempts = 3
	cfg.Cache.TTL = "10m"
	cfg.Cache.MaxEntries = 256

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return lenserr.Wrap(err, lenserr.CodeCLISetupFailure, "encoding starter config")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return lenserr.Wrap(err, lenserr.CodeCLISetupFailure, "creating config directory")
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return lenserr.Wrap(err, lenserr.CodeCLISetupFailure, "writing config file")
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nStore API keys with: pagelens secret set pagelens <provider>\n", path)
	return err
}
