// Package types defines the shared value types exchanged between the Glimpse
// core pipeline, the HTTP API, and the external capture/search collaborators.
package types

import (
	"fmt"
	"strings"
	"time"
)

// ChatRequest is the payload of a chat turn submitted by a client.
type ChatRequest struct {
	Message string `json:"message"`
	// UseOCR and UseWeb force the corresponding context source on,
	// bypassing the analyzer's own decision.
	UseOCR bool `json:"use_ocr"`
	UseWeb bool `json:"use_web"`
}

// ChatResponse is the assistant's answer plus the raw context that was
// considered while producing it.
type ChatResponse struct {
	Response   string `json:"response"`
	ScreenText string `json:"screen_text"`
	WindowInfo string `json:"window_info"`
	WebResults string `json:"web_results"`
}

// Message is a single conversation turn stored in conversation memory.
type Message struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// WindowInfo describes the currently focused desktop window.
type WindowInfo struct {
	Title       string `json:"title"`
	ProcessName string `json:"process_name"`
	PID         int    `json:"pid,omitempty"`
}

// String renders the canonical window-info line consumed by the scorer and
// the prompt builder.
func (w WindowInfo) String() string {
	if w.Title == "" {
		return ""
	}
	if w.ProcessName == "" {
		return fmt.Sprintf("Active window: %s", w.Title)
	}
	return fmt.Sprintf("Active window: %s (process: %s)", w.Title, w.ProcessName)
}

// OCRSnapshot is a single timestamped OCR capture of the screen.
type OCRSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// CaptureStats reports the health of the live capture loop.
type CaptureStats struct {
	Frames    int    `json:"frames"`
	OCREvents int    `json:"ocr_events"`
	LastError string `json:"last_error"`
	OCRReady  bool   `json:"ocr_ready"`
}

// WebSearchResult is one hit returned by the web search client.
type WebSearchResult struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Body  string `json:"body"`
}

// WebSearchResponse is the full result set for one search query.
type WebSearchResponse struct {
	Query   string            `json:"query"`
	Results []WebSearchResult `json:"results"`
}

// Formatted renders the result set as the plain-text block injected into
// prompts. Returns "" when there are no results.
func (r WebSearchResponse) Formatted() string {
	if len(r.Results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Web search results:\n")
	for i, res := range r.Results {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s\n  %s\n  %s", res.Title, res.Href, res.Body)
	}
	return b.String()
}
