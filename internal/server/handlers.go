// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/pagelens/pagelens/internal/orchestrator"
	"github.com/pagelens/pagelens/internal/task"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
)

// Orchestrator is the slice of the orchestrator API the HTTP layer needs.
type Orchestrator interface {
	Execute(ctx context.Context, req task.Request) (task.Result, error)
	RefreshHealth(ctx context.Context)
	Providers() []orchestrator.ProviderInfo
	ClearCache()
}

func (s *Server) registerRoutes() {
	s.router.Get("/v1/healthz", s.handleHealthz)
	s.router.Post("/v1/tasks", s.handleTask)
	s.router.Get("/v1/providers", s.handleProviders)
	s.router.Post("/v1/providers/refresh", s.handleRefresh)
	s.router.Post("/v1/cache/clear", s.handleCacheClear)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	var req task.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, lenserr.Wrap(err, lenserr.CodeServerRequestInvalid, "decoding task request"))
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	result, err := s.orch.Execute(r.Context(), req)
	if err != nil {
		slog.Warn("task failed",
			"request_id", req.ID,
			"task", string(req.Kind),
			"error", err,
		)
		writeError(w, err)
		return
	}

	slog.Info("task served",
		"request_id", req.ID,
		"task", string(req.Kind),
		"provider", result.Provider,
		"from_cache", result.FromCache,
		"latency_ms", result.LatencyMs,
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": s.orch.Providers(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.orch.RefreshHealth(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": s.orch.Providers(),
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	s.orch.ClearCache()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to write response body", "error", err)
	}
}

// errorBody is the JSON error envelope the extension consumes.
type errorBody struct {
	Error string       `json:"error"`
	Code  lenserr.Code `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, lenserr.HTTPStatus(err), errorBody{
		Error: err.Error(),
		Code:  lenserr.CodeOf(err),
	})
}
