package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/glimpselabs/glimpse/internal/assistant"
	"github.com/glimpselabs/glimpse/internal/llm"
	"github.com/glimpselabs/glimpse/pkg/types"
)

// ChatHandlers serves the chat endpoint and the context-decision inspector.
type ChatHandlers struct {
	assistant *assistant.Assistant
	hub       *WebSocketHub
	logger    *slog.Logger
}

// NewChatHandlers creates chat handlers. hub may be nil when no websocket
// hub is running.
func NewChatHandlers(a *assistant.Assistant, hub *WebSocketHub, logger *slog.Logger) *ChatHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandlers{assistant: a, hub: hub, logger: logger}
}

// PostChat handles POST /api/chat: one full assistant turn.
func (h *ChatHandlers) PostChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required", nil)
		return
	}

	resp, err := h.assistant.Chat(r.Context(), req)
	if err != nil {
		h.logger.Error("chat turn failed", "error", err)
		switch {
		case errors.Is(err, llm.ErrNotAvailable), errors.Is(err, llm.ErrCircuitOpen):
			respondError(w, http.StatusServiceUnavailable, "model backend unavailable", err)
		default:
			respondError(w, http.StatusBadGateway, "chat failed", err)
		}
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(Event{
			Type:      EventChat,
			Timestamp: time.Now().UTC(),
			Payload: map[string]interface{}{
				"message":     req.Message,
				"window_info": resp.WindowInfo,
			},
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetDecision handles GET /api/context/decision?q=...: reports which
// context sources the analyzer would use for a query, without running it.
func (h *ChatHandlers) GetDecision(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}

	decision := h.assistant.Decision(query)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":      query,
		"query_type": decision.QueryType.String(),
		"use_ocr":    decision.UseOCR,
		"use_web":    decision.UseWeb,
		"confidence": decision.Confidence,
		"reasoning":  decision.Reasoning,
		"search_params": func() interface{} {
			if decision.SearchParams == nil {
				return nil
			}
			return decision.SearchParams
		}(),
	})
}
