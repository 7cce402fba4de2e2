// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pagelens/pagelens/internal/secrets"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the top-level PageLens configuration.
type Config struct {
	Server     ServerConfig              `mapstructure:"server"`
	Providers  map[string]ProviderConfig `mapstructure:"providers"`
	Routing    RoutingConfig             `mapstructure:"routing"`
	RateLimits map[string]RateLimit      `mapstructure:"rate_limits"`
	Cache      CacheConfig               `mapstructure:"cache"`
	Health     HealthConfig              `mapstructure:"health"`
}

// ServerConfig controls the local HTTP endpoint the extension talks to.
type ServerConfig struct {
	Listen         string   `mapstructure:"listen"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds credentials and model selection for one backend.
// APIKey may be a keyring://service/key URI. A remote provider is
// registered only when its api_key resolves non-empty; the on-device
// entry uses Enabled instead since it has no key.
type ProviderConfig struct {
	DisplayName string `mapstructure:"display_name"`
	APIKey      string `mapstructure:"api_key"`
	Endpoint    string `mapstructure:"endpoint"`
	Model       string `mapstructure:"model"`
	Enabled     bool   `mapstructure:"enabled"`
}

// RoutingConfig controls provider selection.
type RoutingConfig struct {
	// Preferred ranks the named provider first whenever it is healthy.
	Preferred   string        `mapstructure:"preferred"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryBase   time.Duration `mapstructure:"retry_base"`
	// Affinity is the static per-provider, per-task score bonus table.
	Affinity map[string]map[string]float64 `mapstructure:"affinity"`
}

// RateLimit caps one task category's outbound calls per trailing window.
type RateLimit struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// CacheConfig controls result memoization.
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// HealthConfig controls the background availability refresh.
type HealthConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// KnownProviders is the closed set of configurable backends.
var KnownProviders = []string{"anthropic", "openai", "google", "ondevice"}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix PAGELENS_). When store is
// non-nil, keyring:// values are resolved before unmarshalling.
func Load(path string, store secrets.Store) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.listen", "127.0.0.1:18910")
	v.SetDefault("routing.max_attempts", 3)
	v.SetDefault("routing.retry_base", "1s")
	v.SetDefault("rate_limits.summarize.limit", 60)
	v.SetDefault("rate_limits.summarize.window", "1m")
	v.SetDefault("rate_limits.answer_question.limit", 10)
	v.SetDefault("rate_limits.answer_question.window", "1m")
	v.SetDefault("rate_limits.translate.limit", 15)
	v.SetDefault("rate_limits.translate.window", "1m")
	v.SetDefault("rate_limits.analyze_sentiment.limit", 15)
	v.SetDefault("rate_limits.analyze_sentiment.window", "1m")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.max_entries", 256)
	v.SetDefault("health.refresh_interval", "1m")

	// Environment
	v.SetEnvPrefix("PAGELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, lenserr.Errorf(lenserr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	if store != nil {
		secrets.ResolveViperSecrets(v, store)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns every
// problem found rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateProviders()...)
	errs = append(errs, c.validateRouting()...)
	errs = append(errs, c.validateRateLimits()...)
	errs = append(errs, c.validateCache()...)
	errs = append(errs, c.validateHealth()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err,
		))
		return errs
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d", port))
	}

	return errs
}

func (c *Config) validateProviders() []error {
	var errs []error

	known := make(map[string]bool, len(KnownProviders))
	for _, name := range KnownProviders {
		known[name] = true
	}

	for name := range c.Providers {
		if !known[name] {
			errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
				"config: providers.%s is not a known provider (expected one of %s)",
				name, strings.Join(KnownProviders, ", ")))
		}
	}

	return errs
}

func (c *Config) validateRouting() []error {
	var errs []error

	if c.Routing.MaxAttempts < 1 {
		errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
			"config: routing.max_attempts must be at least 1, got %d", c.Routing.MaxAttempts))
	}
	if c.Routing.RetryBase <= 0 {
		errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
			"config: routing.retry_base must be positive, got %s", c.Routing.RetryBase))
	}

	if c.Routing.Preferred != "" {
		if _, ok := c.Providers[c.Routing.Preferred]; !ok {
			errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
				"config: routing.preferred %q references a provider which is not configured",
				c.Routing.Preferred))
		}
	}

	for providerName, kinds := range c.Routing.Affinity {
		if _, ok := c.Providers[providerName]; !ok {
			errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
				"config: routing.affinity.%s references a provider which is not configured", providerName))
		}
		for kind := range kinds {
			if !task.Kind(kind).Valid() {
				errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
					"config: routing.affinity.%s.%s is not a known task kind", providerName, kind))
			}
		}
	}

	return errs
}

func (c *Config) validateRateLimits() []error {
	var errs []error

	for kind, rl := range c.RateLimits {
		if !task.Kind(kind).Valid() {
			errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
				"config: rate_limits.%s is not a known task kind", kind))
			continue
		}
		if rl.Limit < 1 {
			errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
				"config: rate_limits.%s.limit must be at least 1, got %d", kind, rl.Limit))
		}
		if rl.Window <= 0 {
			errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
				"config: rate_limits.%s.window must be positive, got %s", kind, rl.Window))
		}
	}

	return errs
}

func (c *Config) validateCache() []error {
	var errs []error

	if c.Cache.TTL <= 0 {
		errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
			"config: cache.ttl must be positive, got %s", c.Cache.TTL))
	}
	if c.Cache.MaxEntries < 1 {
		errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
			"config: cache.max_entries must be at least 1, got %d", c.Cache.MaxEntries))
	}

	return errs
}

func (c *Config) validateHealth() []error {
	var errs []error

	if c.Health.RefreshInterval <= 0 {
		errs = append(errs, lenserr.Errorf(lenserr.CodeConfigValidateInvalidValue,
			"config: health.refresh_interval must be positive, got %s", c.Health.RefreshInterval))
	}

	return errs
}
