// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package main

import (
	"log/slog"

	"github.com/pagelens/pagelens/internal/config"
	"github.com/pagelens/pagelens/internal/orchestrator"
	"github.com/pagelens/pagelens/internal/provider"
	"github.com/pagelens/pagelens/internal/provider/anthropic"
	"github.com/pagelens/pagelens/internal/provider/google"
	"github.com/pagelens/pagelens/internal/provider/ondevice"
	"github.com/pagelens/pagelens/internal/provider/openai"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

// displayNames are the defaults shown in provider listings when the
// config does not override them.
var displayNames = map[string]string{
	"anthropic": "Anthropic Claude",
	"openai":    "OpenAI GPT",
	"google":    "Google Gemini",
	"ondevice":  "On-Device Model",
}

// buildOrchestrator constructs the orchestrator from validated config
// and registers every enabled provider. Remote providers register only
// when an API key is present; the on-device backend registers when its
// config entry is enabled.
func buildOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, error) {
	orch := orchestrator.New(orchestrator.Config{
		MaxAttempts:       cfg.Routing.MaxAttempts,
		RetryBase:         cfg.Routing.RetryBase,
		CacheTTL:          cfg.Cache.TTL,
		CacheSize:         cfg.Cache.MaxEntries,
		RateLimits:        rateLimits(cfg),
		Affinity:          affinity(cfg),
		PreferredProvider: cfg.Routing.Preferred,
	})

	for name, pc := range cfg.Providers {
		adapter, err := buildAdapter(name, pc)
		if err != nil {
			return nil, lenserr.Wrapf(err, lenserr.CodeCLISetupFailure, "configuring provider %s", name)
		}
		if adapter == nil {
			slog.Debug("provider not enabled, skipping", "provider", name)
			continue
		}
		desc := provider.Descriptor{
			Name:        name,
			DisplayName: displayName(name, pc),
			Adapter:     adapter,
		}
		if err := orch.RegisterProvider(desc); err != nil {
			return nil, err
		}
		slog.Info("provider registered", "provider", name)
	}

	return orch, nil
}

// buildAdapter returns the adapter for one config entry, or nil when the
// entry is not enabled.
func buildAdapter(name string, pc config.ProviderConfig) (provider.Adapter, error) {
	switch name {
	case "anthropic":
		if pc.APIKey == "" {
			return nil, nil
		}
		return anthropic.New(anthropic.Config{
			APIKey:  pc.APIKey,
			BaseURL: pc.Endpoint,
			Model:   pc.Model,
		})
	case "openai":
		if pc.APIKey == "" {
			return nil, nil
		}
		return openai.New(openai.Config{
			APIKey:  pc.APIKey,
			BaseURL: pc.Endpoint,
			Model:   pc.Model,
		})
	case "google":
		if pc.APIKey == "" {
			return nil, nil
		}
		return google.New(google.Config{
			APIKey: pc.APIKey,
			Model:  pc.Model,
		})
	case "ondevice":
		if !pc.Enabled {
			return nil, nil
		}
		// No local inference engine ships with the service yet; the
		// adapter reports unavailable until one is attached.
		return ondevice.New(nil), nil
	default:
		return nil, lenserr.New(lenserr.CodeConfigValidateInvalidValue, "unknown provider "+name, lenserr.FieldProvider(name))
	}
}

func displayName(name string, pc config.ProviderConfig) string {
	if pc.DisplayName != "" {
		return pc.DisplayName
	}
	if dn, ok := displayNames[name]; ok {
		return dn
	}
	return name
}

func rateLimits(cfg *config.Config) map[task.Kind]orchestrator.RateLimit {
	if len(cfg.RateLimits) == 0 {
		return nil
	}
	limits := make(map[task.Kind]orchestrator.RateLimit, len(cfg.RateLimits))
	for kind, rl := range cfg.RateLimits {
		limits[task.Kind(kind)] = orchestrator.RateLimit{Limit: rl.Limit, Window: rl.Window}
	}
	return limits
}

func affinity(cfg *config.Config) orchestrator.AffinityTable {
	if len(cfg.Routing.Affinity) == 0 {
		return nil
	}
	table := make(orchestrator.AffinityTable, len(cfg.Routing.Affinity))
	for name, bonuses := range cfg.Routing.Affinity {
		table[name] = make(map[task.Kind]float64, len(bonuses))
		for kind, bonus := range bonuses {
			table[name][task.Kind(kind)] = bonus
		}
	}
	return table
}
