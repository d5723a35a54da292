// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"

	"github.com/answersearch/answersearch-gw/pkg/core/engine"
	"github.com/answersearch/answersearch-gw/pkg/core/schema"
	"github.com/answersearch/answersearch-gw/pkg/observability/logging"
	"github.com/answersearch/answersearch-gw/pkg/observability/metrics"
)

// Handler implements the HTTP adapter
type Handler struct {
	engine  *engine.Engine
	logger  *logging.Logger
	metrics *metrics.Metrics
	mux     *http.ServeMux
}

// New creates a new HTTP handler
func New(eng *engine.Engine, logger *logging.Logger, m *metrics.Metrics) *Handler {
	h := &Handler{
		engine:  eng,
		logger:  logger,
		metrics: m,
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("POST /v1/answers", h.handleAnswers)
	h.mux.Handle("GET /metrics", m.Handler())

	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	h.mux.ServeHTTP(w, r)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

// handleAnswers handles POST /v1/answers: validates the request, then
// streams the pipeline's events as SSE frames until the terminal event.
func (h *Handler) handleAnswers(w http.ResponseWriter, r *http.Request) {
	var req schema.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to parse request", "error", err)
		h.writeError(w, http.StatusBadRequest, schema.ErrKindInvalidRequest, "Failed to parse request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, schema.ErrKindInvalidRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming_not_supported", "Streaming not supported")
		return
	}

	h.logger.Info("Processing answer request", "query", req.Query)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// r.Context() is cancelled on client disconnect, which unwinds the
	// whole pipeline at its current suspension point.
	events := h.engine.ProcessQueryStream(r.Context(), req.Query)

	for event := range events {
		frame, err := event.MarshalSSE()
		if err != nil {
			h.logger.Error("Failed to marshal event", "error", err)
			continue
		}
		if _, err := w.Write(frame); err != nil {
			h.logger.Info("Client went away mid-stream", "error", err)
			return
		}
		flusher.Flush()
	}

	h.logger.Info("Streaming completed")
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"type":    errType,
			"message": message,
		},
	})
}
