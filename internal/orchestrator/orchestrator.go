// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

// Package orchestrator selects among registered AI providers, tracks their
// health, load-balances and rate-limits outbound calls, retries transient
// failures, and memoizes idempotent results. It is the single entry point
// for "perform this task with the best available provider".
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pagelens/pagelens/internal/provider"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
	"github.com/pagelens/pagelens/pkg/health"
)

// DefaultMaxAttempts is the per-provider retry budget.
const DefaultMaxAttempts = 3

// Config tunes one orchestrator instance. Zero values fall back to the
// package defaults.
type Config struct {
	MaxAttempts    int
	RetryBase      time.Duration
	CacheTTL       time.Duration
	CacheSize      int
	RateLimits     map[task.Kind]RateLimit
	Affinity       AffinityTable
	// PreferredProvider, when set and healthy, is ranked ahead of
	// higher-scoring candidates.
	PreferredProvider string
}

// Orchestrator owns all mutable routing state: the provider set, health
// records, rate windows, outstanding counters, and the result cache. It
// has no package-level state; construct one per process lifecycle.
type Orchestrator struct {
	mu        sync.RWMutex
	providers map[string]provider.Descriptor
	order     []string // registration order, for stable ranking ties

	tracker  *HealthTracker
	balancer *loadBalancer
	limiter  *RateLimiter
	retrier  *RetryExecutor
	cache    *ResultCache

	maxAttempts int
	affinity    AffinityTable
	preferred   string
	nowFunc     func() time.Time // for testing
}

// New creates an orchestrator with no providers registered.
func New(cfg Config) *Orchestrator {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	limits := cfg.RateLimits
	if limits == nil {
		limits = DefaultRateLimits()
	}

	return &Orchestrator{
		providers:   make(map[string]provider.Descriptor),
		tracker:     NewHealthTracker(),
		balancer:    newLoadBalancer(),
		limiter:     NewRateLimiter(limits),
		retrier:     NewRetryExecutor(cfg.RetryBase),
		cache:       NewResultCache(cfg.CacheSize, cfg.CacheTTL),
		maxAttempts: maxAttempts,
		affinity:    cfg.Affinity,
		preferred:   cfg.PreferredProvider,
		nowFunc:     time.Now,
	}
}

// RegisterProvider adds a provider and kicks off its initial availability
// probe in the background; registration itself never blocks on the probe.
func (o *Orchestrator) RegisterProvider(desc provider.Descriptor) error {
	if desc.Name == "" || desc.Adapter == nil {
		return lenserr.New(lenserr.CodeProviderRequestInvalid, "descriptor needs a name and an adapter")
	}

	o.mu.Lock()
	if _, ok := o.providers[desc.Name]; ok {
		o.mu.Unlock()
		return lenserr.New(lenserr.CodeProviderRequestInvalid, "provider already registered", lenserr.FieldProvider(desc.Name))
	}
	o.providers[desc.Name] = desc
	o.order = append(o.order, desc.Name)
	o.mu.Unlock()

	o.tracker.Register(desc.Name)

	go o.probe(context.Background(), desc)

	return nil
}

// Execute routes one task request through selection, cache, rate limiting,
// retry, and the single-fallback path.
func (o *Orchestrator) Execute(ctx context.Context, req task.Request) (task.Result, error) {
	if err := req.Validate(); err != nil {
		return task.Result{}, err
	}

	ranked, err := o.candidates(req)
	if err != nil {
		return task.Result{}, err
	}

	// Cache hits skip rate limiting and provider dispatch entirely.
	key := req.CacheKey()
	if cached, ok := o.cache.Get(key); ok {
		cached.FromCache = true
		return cached, nil
	}

	if err := o.limiter.Admit(ctx, req.Kind); err != nil {
		return task.Result{}, err
	}

	primary := o.balancer.Acquire(ranked)
	out, latency, callErr := o.callWithRetry(ctx, primary, req)
	o.balancer.Release(primary)

	if callErr == nil {
		o.tracker.UpdateHealth(primary, true, latency)
		result := newResult(out, primary, latency)
		o.cache.Put(key, result)
		return result, nil
	}

	o.tracker.UpdateHealth(primary, false, latency)
	slog.Warn("provider exhausted retry budget",
		"provider", primary, "task", string(req.Kind), "error", callErr)

	// Exactly one fallback, with no retry of its own, so the worst case
	// stays bounded.
	fallback, ok := o.nextHealthy(ranked, primary)
	if !ok {
		return task.Result{}, callErr
	}

	o.balancer.Acquire([]Candidate{{Name: fallback}})
	out, latency, fbErr := o.callOnce(ctx, fallback, req)
	o.balancer.Release(fallback)

	if fbErr != nil {
		o.tracker.UpdateHealth(fallback, false, latency)
		return task.Result{}, lenserr.Wrap(fbErr, lenserr.CodeProviderUpstreamFailure,
			"fallback provider failed after primary exhausted retries",
			lenserr.FieldProvider(fallback),
			lenserr.Field("primary_provider", primary),
		)
	}

	o.tracker.UpdateHealth(fallback, true, latency)
	result := newResult(out, fallback, latency)
	o.cache.Put(key, result)
	return result, nil
}

// RefreshHealth probes every registered provider concurrently and records
// availability. It never fails: a probe that cannot complete just marks
// its provider unavailable.
func (o *Orchestrator) RefreshHealth(ctx context.Context) {
	o.mu.RLock()
	descs := make([]provider.Descriptor, 0, len(o.providers))
	for _, name := range o.order {
		descs = append(descs, o.providers[name])
	}
	o.mu.RUnlock()

	var wg sync.WaitGroup
	for _, desc := range descs {
		wg.Add(1)
		go func(d provider.Descriptor) {
			defer wg.Done()
			o.probe(ctx, d)
		}(desc)
	}
	wg.Wait()
}

// StartHealthLoop refreshes provider health every interval until the
// context is canceled.
func (o *Orchestrator) StartHealthLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			o.RefreshHealth(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// ClearCache drops all memoized results.
func (o *Orchestrator) ClearCache() {
	o.cache.Clear()
}

// HealthSnapshot returns current health records keyed by provider name.
func (o *Orchestrator) HealthSnapshot() map[string]health.Record {
	return o.tracker.Snapshot()
}

// ProviderInfo describes one registered provider for the status surfaces.
type ProviderInfo struct {
	Name         string        `json:"name"`
	DisplayName  string        `json:"display_name"`
	Capabilities []task.Kind   `json:"capabilities"`
	Health       health.Record `json:"health"`
}

// Providers lists registered providers in registration order.
func (o *Orchestrator) Providers() []ProviderInfo {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]ProviderInfo, 0, len(o.order))
	for _, name := range o.order {
		desc := o.providers[name]
		caps := desc.Capabilities()
		kinds := make([]task.Kind, 0, len(caps))
		for _, k := range task.Kinds() {
			if caps.Has(k) {
				kinds = append(kinds, k)
			}
		}
		rec, _ := o.tracker.Record(name)
		out = append(out, ProviderInfo{
			Name:         name,
			DisplayName:  desc.DisplayName,
			Capabilities: kinds,
			Health:       rec,
		})
	}
	return out
}

// probe checks one provider's availability and records the outcome.
func (o *Orchestrator) probe(ctx context.Context, desc provider.Descriptor) {
	available := desc.Adapter.Available(ctx)
	o.tracker.SetAvailability(desc.Name, available)
	if !available {
		slog.Debug("provider probe reported unavailable", "provider", desc.Name)
	}
}

// candidates filters the provider set to those supporting the task kind
// and currently healthy, scored and ranked. A per-call provider override
// narrows the set to that provider alone.
func (o *Orchestrator) candidates(req task.Request) ([]Candidate, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if req.Provider != "" {
		if _, ok := o.providers[req.Provider]; !ok {
			return nil, lenserr.New(lenserr.CodeProviderNotFound, "provider not found: "+req.Provider, lenserr.FieldProvider(req.Provider))
		}
	}

	var list []Candidate
	for _, name := range o.order {
		if req.Provider != "" && name != req.Provider {
			continue
		}
		desc := o.providers[name]
		if !desc.Capabilities().Has(req.Kind) {
			continue
		}
		if !o.tracker.IsHealthy(name) {
			continue
		}
		rec, _ := o.tracker.Record(name)
		list = append(list, Candidate{
			Name:  name,
			Score: scoreRecord(rec, o.affinity.Bonus(name, req.Kind)),
		})
	}

	if len(list) == 0 {
		return nil, lenserr.New(lenserr.CodeProviderNoneAvailable,
			"no healthy provider supports this task",
			lenserr.FieldTask(string(req.Kind)),
		)
	}

	ranked := rank(list)

	if o.preferred != "" {
		for i, c := range ranked {
			if c.Name == o.preferred && i > 0 {
				copy(ranked[1:i+1], ranked[:i])
				ranked[0] = c
				break
			}
		}
	}

	return ranked, nil
}

// nextHealthy returns the highest-ranked candidate other than exclude that
// is still healthy at fallback time.
func (o *Orchestrator) nextHealthy(ranked []Candidate, exclude string) (string, bool) {
	for _, c := range ranked {
		if c.Name == exclude {
			continue
		}
		if o.tracker.IsHealthy(c.Name) {
			return c.Name, true
		}
	}
	return "", false
}

// callWithRetry invokes the provider through the retry executor and
// reports the latency of the final attempt.
func (o *Orchestrator) callWithRetry(ctx context.Context, name string, req task.Request) (task.Output, time.Duration, error) {
	var (
		out     task.Output
		latency time.Duration
	)

	err := o.retrier.Run(ctx, o.maxAttempts, func(ctx context.Context) error {
		var attemptErr error
		out, latency, attemptErr = o.callOnce(ctx, name, req)
		return attemptErr
	})
	return out, latency, err
}

// callOnce invokes the provider's adapter a single time, measuring latency.
func (o *Orchestrator) callOnce(ctx context.Context, name string, req task.Request) (task.Output, time.Duration, error) {
	o.mu.RLock()
	desc, ok := o.providers[name]
	o.mu.RUnlock()
	if !ok {
		return task.Output{}, 0, lenserr.New(lenserr.CodeProviderNotFound, "provider not found: "+name, lenserr.FieldProvider(name))
	}

	start := o.nowFunc()
	out, err := provider.Invoke(ctx, desc.Adapter, req)
	latency := o.nowFunc().Sub(start)
	return out, latency, err
}

func newResult(out task.Output, providerName string, latency time.Duration) task.Result {
	return task.Result{
		Text:       out.Text,
		Confidence: out.Confidence,
		Provider:   providerName,
		FromCache:  false,
		LatencyMs:  latency.Milliseconds(),
		Usage:      out.Usage,
	}
}
