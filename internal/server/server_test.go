// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pagelens/pagelens/internal/orchestrator"
	"github.com/pagelens/pagelens/internal/server"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
	"github.com/pagelens/pagelens/pkg/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOrchestrator scripts the routing layer behind the HTTP handlers.
type stubOrchestrator struct {
	result    task.Result
	err       error
	lastReq   task.Request
	refreshed bool
	cleared   bool
}

func (s *stubOrchestrator) Execute(_ context.Context, req task.Request) (task.Result, error) {
	s.lastReq = req
	return s.result, s.err
}

func (s *stubOrchestrator) RefreshHealth(context.Context) { s.refreshed = true }

func (s *stubOrchestrator) Providers() []orchestrator.ProviderInfo {
	return []orchestrator.ProviderInfo{
		{
			Name:         "anthropic",
			DisplayName:  "Anthropic Claude",
			Capabilities: task.Kinds(),
			Health:       health.Record{Available: true, SuccessRate: 1.0},
		},
	}
}

func (s *stubOrchestrator) ClearCache() { s.cleared = true }

func newTestServer(t *testing.T, orch server.Orchestrator) http.Handler {
	t.Helper()
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"}, orch)
	require.NoError(t, err)
	return srv.Handler()
}

func TestServer_New(t *testing.T) {
	_, err := server.New(server.Config{}, &stubOrchestrator{})
	assert.Error(t, err, "listen address is required")

	_, err = server.New(server.Config{ListenAddr: "127.0.0.1:0"}, nil)
	assert.Error(t, err, "orchestrator is required")
}

func TestServer_Healthz(t *testing.T) {
	h := newTestServer(t, &stubOrchestrator{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_TaskSuccess(t *testing.T) {
	orch := &stubOrchestrator{
		result: task.Result{Text: "a summary", Provider: "anthropic", Confidence: 0.9},
	}
	h := newTestServer(t, orch)

	body := `{"kind":"summarize","text":"page body"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/tasks", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var got task.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "a summary", got.Text)
	assert.Equal(t, "anthropic", got.Provider)

	assert.Equal(t, task.KindSummarize, orch.lastReq.Kind)
	assert.NotEmpty(t, orch.lastReq.ID, "the handler assigns a request id when absent")
}

func TestServer_TaskKeepsCallerID(t *testing.T) {
	orch := &stubOrchestrator{}
	h := newTestServer(t, orch)

	body := `{"id":"req-42","kind":"summarize","text":"page body"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/tasks", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", orch.lastReq.ID)
}

func TestServer_TaskMalformedBody(t *testing.T) {
	h := newTestServer(t, &stubOrchestrator{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/tasks", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_TaskErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "invalid input",
			err:        lenserr.New(lenserr.CodeTaskInvalidInput, "task text must not be empty"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no provider available",
			err:        lenserr.New(lenserr.CodeProviderNoneAvailable, "no healthy provider supports this task"),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "provider not found",
			err:        lenserr.New(lenserr.CodeProviderNotFound, "provider not found: mistral"),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "upstream failure",
			err:        lenserr.New(lenserr.CodeProviderUpstreamFailure, "anthropic is down"),
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &stubOrchestrator{err: tt.err})

			body := `{"kind":"summarize","text":"page body"}`
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/tasks", strings.NewReader(body)))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var envelope struct {
				Error string `json:"error"`
				Code  string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.NotEmpty(t, envelope.Error)
			assert.Equal(t, string(lenserr.CodeOf(tt.err)), envelope.Code)
		})
	}
}

func TestServer_Providers(t *testing.T) {
	h := newTestServer(t, &stubOrchestrator{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/providers", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Providers []orchestrator.ProviderInfo `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Providers, 1)
	assert.Equal(t, "anthropic", body.Providers[0].Name)
	assert.True(t, body.Providers[0].Health.Available)
}

func TestServer_ProvidersRefresh(t *testing.T) {
	orch := &stubOrchestrator{}
	h := newTestServer(t, orch)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/providers/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, orch.refreshed)
}

func TestServer_CacheClear(t *testing.T) {
	orch := &stubOrchestrator{}
	h := newTestServer(t, orch)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/cache/clear", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, orch.cleared)
}

func TestServer_CORSPreflight(t *testing.T) {
	h := newTestServer(t, &stubOrchestrator{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/tasks", nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "chrome-extension://abcdef", rec.Header().Get("Access-Control-Allow-Origin"))
}
