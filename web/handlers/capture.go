package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/glimpselabs/glimpse/internal/capture"
	"github.com/glimpselabs/glimpse/pkg/types"
)

// CaptureHandlers serves the capture agent's ingest endpoints and the
// transcript inspector.
type CaptureHandlers struct {
	transcript *capture.Transcript
	windows    *capture.WindowTracker
	hub        *WebSocketHub
}

// NewCaptureHandlers creates capture handlers. hub may be nil.
func NewCaptureHandlers(transcript *capture.Transcript, windows *capture.WindowTracker, hub *WebSocketHub) *CaptureHandlers {
	return &CaptureHandlers{transcript: transcript, windows: windows, hub: hub}
}

// frameRequest is one OCR frame posted by the capture agent.
type frameRequest struct {
	Text   string `json:"text"`
	Window struct {
		Title       string `json:"title"`
		ProcessName string `json:"process_name"`
	} `json:"window"`
}

// PostFrame handles POST /api/capture/frame: ingest one OCR frame plus the
// active window it was taken from.
func (h *CaptureHandlers) PostFrame(w http.ResponseWriter, r *http.Request) {
	var req frameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	h.transcript.Append(req.Text)
	if req.Window.Title != "" {
		h.windows.Update(types.WindowInfo{
			Title:       req.Window.Title,
			ProcessName: req.Window.ProcessName,
		}, time.Now())
	}

	if h.hub != nil {
		h.hub.Broadcast(Event{
			Type:      EventCaptureFrame,
			Timestamp: time.Now().UTC(),
			Payload: map[string]interface{}{
				"chars":  len(req.Text),
				"window": req.Window.Title,
			},
		})
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// PostLive handles POST /api/capture/live: the agent reports whether live
// capture is running.
func (h *CaptureHandlers) PostLive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Live bool `json:"live"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	h.transcript.SetLive(req.Live)

	if h.hub != nil {
		h.hub.Broadcast(Event{
			Type:      EventCaptureState,
			Timestamp: time.Now().UTC(),
			Payload:   map[string]bool{"live": req.Live},
		})
	}

	respondJSON(w, http.StatusOK, map[string]bool{"live": req.Live})
}

// GetTranscript handles GET /api/capture/transcript: the rendered OCR
// transcript plus the current window line.
func (h *CaptureHandlers) GetTranscript(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transcript":  h.transcript.Render(),
		"window_info": h.windows.InfoLine(),
		"live":        h.transcript.Live(),
	})
}

// GetStats handles GET /api/capture/stats.
func (h *CaptureHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.transcript.Stats())
}

// DeleteTranscript handles DELETE /api/capture/transcript.
func (h *CaptureHandlers) DeleteTranscript(w http.ResponseWriter, r *http.Request) {
	h.transcript.Clear()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
