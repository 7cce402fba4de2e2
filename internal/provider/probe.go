// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package provider

import (
	"context"
	"io"
	"net/http"
	"time"

	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

// ProbeTimeout bounds a single availability probe so health refreshes stay
// cheap even when a backend is blackholing connections.
const ProbeTimeout = 5 * time.Second

// ProbeEndpoint makes a lightweight authenticated GET against a backend's
// models endpoint to confirm the API key works and the service is up. The
// headers map carries the backend's authentication scheme.
func ProbeEndpoint(ctx context.Context, client *http.Client, url string, headers map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return lenserr.Errorf(lenserr.CodeProviderRequestInvalid, "building probe request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return lenserr.Errorf(lenserr.CodeProviderUpstreamFailure, "probing %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return lenserr.Errorf(lenserr.CodeProviderKeyInvalid, "invalid API key (HTTP %d)", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return lenserr.Errorf(lenserr.CodeProviderUpstreamFailure, "probe failed (HTTP %d)", resp.StatusCode)
	}

	return nil
}
