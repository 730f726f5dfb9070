package handlers

import (
	"net/http"

	"github.com/glimpselabs/glimpse/internal/memory"
)

// SessionHandlers exposes conversation memory management.
type SessionHandlers struct {
	memory *memory.ConversationMemory
}

// NewSessionHandlers creates session handlers.
func NewSessionHandlers(mem *memory.ConversationMemory) *SessionHandlers {
	return &SessionHandlers{memory: mem}
}

// GetStats handles GET /api/sessions: aggregate memory statistics.
func (h *SessionHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.memory.Stats())
}

// GetHistory handles GET /api/sessions/{id}/history.
func (h *SessionHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session id is required", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   h.memory.History(sessionID, false),
	})
}

// GetSummary handles GET /api/sessions/{id}/summary.
func (h *SessionHandlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session id is required", nil)
		return
	}
	summary, ok := h.memory.ContextSummary(sessionID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"summary":    summary,
		"available":  ok,
	})
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (h *SessionHandlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session id is required", nil)
		return
	}
	h.memory.ClearSession(sessionID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// PostAnonymize handles POST /api/sessions/{id}/anonymize: redact sensitive
// patterns from the stored history.
func (h *SessionHandlers) PostAnonymize(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session id is required", nil)
		return
	}
	h.memory.AnonymizeSession(sessionID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "anonymized"})
}

// DeleteAll handles DELETE /api/sessions.
func (h *SessionHandlers) DeleteAll(w http.ResponseWriter, r *http.Request) {
	h.memory.ClearAll()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
