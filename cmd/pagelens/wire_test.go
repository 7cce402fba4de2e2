// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagelens/pagelens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAdapter_SkipsDisabledEntries(t *testing.T) {
	for _, name := range []string{"anthropic", "openai", "google"} {
		adapter, err := buildAdapter(name, config.ProviderConfig{})
		require.NoError(t, err, name)
		assert.Nil(t, adapter, "%s without an api_key must not register", name)
	}

	adapter, err := buildAdapter("ondevice", config.ProviderConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, adapter)

	_, err = buildAdapter("mistral", config.ProviderConfig{APIKey: "x"})
	assert.Error(t, err)
}

func TestBuildAdapter_RemoteProviders(t *testing.T) {
	for _, name := range []string{"anthropic", "openai", "google"} {
		adapter, err := buildAdapter(name, config.ProviderConfig{APIKey: "sk-test"})
		require.NoError(t, err, name)
		require.NotNil(t, adapter, name)
		assert.Equal(t, name, adapter.Name())
	}
}

func TestBuildOrchestrator(t *testing.T) {
	cfg := &config.Config{
		Providers: map[string]config.ProviderConfig{
			"anthropic": {APIKey: "sk-test"},
			"openai":    {}, // no key, skipped
			"ondevice":  {Enabled: true, DisplayName: "Local Model"},
		},
		Routing: config.RoutingConfig{
			MaxAttempts: 3,
			RetryBase:   time.Second,
			Affinity: map[string]map[string]float64{
				"anthropic": {"summarize": 5},
			},
		},
		RateLimits: map[string]config.RateLimit{
			"summarize": {Limit: 60, Window: time.Minute},
		},
		Cache: config.CacheConfig{TTL: 10 * time.Minute, MaxEntries: 256},
	}

	orch, err := buildOrchestrator(cfg)
	require.NoError(t, err)

	infos := orch.Providers()
	require.Len(t, infos, 2)

	names := map[string]string{}
	for _, info := range infos {
		names[info.Name] = info.DisplayName
	}
	assert.Equal(t, "Anthropic Claude", names["anthropic"])
	assert.Equal(t, "Local Model", names["ondevice"])
	assert.NotContains(t, names, "openai")
}

func TestInitCmd_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagelens.yaml")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"init", "--output", path})
	require.NoError(t, root.Execute())

	// The starter file must round-trip through the config loader. No
	// keyring store here, so the keyring:// placeholder stays opaque.
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultAddress, cfg.Server.Listen)
	assert.Contains(t, cfg.Providers, "anthropic")

	// A second run without --force must refuse to overwrite.
	root = NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"init", "--output", path})
	assert.Error(t, root.Execute())
}
