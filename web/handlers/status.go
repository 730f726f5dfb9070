package handlers

import (
	"context"
	"net/http"

	"github.com/glimpselabs/glimpse/internal/capture"
	"github.com/glimpselabs/glimpse/internal/engine"
	"github.com/glimpselabs/glimpse/internal/memory"
)

// ModelStatus reports on the model backend for the status endpoint.
type ModelStatus interface {
	Available() bool
	TestConnection(ctx context.Context) error
}

// StatusHandlers serves health, status, and optimizer metrics.
type StatusHandlers struct {
	model      ModelStatus
	optimizer  *engine.Optimizer
	transcript *capture.Transcript
	memory     *memory.ConversationMemory
	version    string
}

// NewStatusHandlers creates status handlers. model may be nil when no
// backend is configured.
func NewStatusHandlers(model ModelStatus, optimizer *engine.Optimizer, transcript *capture.Transcript,
	mem *memory.ConversationMemory, version string) *StatusHandlers {
	return &StatusHandlers{
		model:      model,
		optimizer:  optimizer,
		transcript: transcript,
		memory:     mem,
		version:    version,
	}
}

// GetHealth handles GET /api/health. No auth, used by monitoring.
func (h *StatusHandlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.version,
	})
}

// GetStatus handles GET /api/status: model availability plus subsystem
// counters in one view.
func (h *StatusHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	modelAvailable := h.model != nil && h.model.Available()
	modelReachable := false
	if modelAvailable {
		modelReachable = h.model.TestConnection(r.Context()) == nil
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"model": map[string]bool{
			"configured": modelAvailable,
			"reachable":  modelReachable,
		},
		"capture":   h.transcript.Stats(),
		"memory":    h.memory.Stats(),
		"optimizer": h.optimizer.MetricsSnapshot(),
	})
}

// GetMetrics handles GET /api/metrics: optimizer savings counters and cache
// occupancy.
func (h *StatusHandlers) GetMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": h.optimizer.MetricsSnapshot(),
		"cache":   h.optimizer.Stats(),
	})
}

// PostCacheCleanup handles POST /api/metrics/cache/cleanup: drop expired
// entries and enforce the size bound now.
func (h *StatusHandlers) PostCacheCleanup(w http.ResponseWriter, r *http.Request) {
	h.optimizer.CleanupCache()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "cleaned",
		"cache":  h.optimizer.Stats(),
	})
}

// DeleteCache handles DELETE /api/metrics/cache: clear all cached results
// and decisions.
func (h *StatusHandlers) DeleteCache(w http.ResponseWriter, r *http.Request) {
	h.optimizer.ClearCache()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
