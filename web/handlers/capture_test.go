package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpselabs/glimpse/internal/capture"
	"github.com/glimpselabs/glimpse/web/handlers"
)

func newCaptureHandlers() (*handlers.CaptureHandlers, *capture.Transcript, *capture.WindowTracker) {
	transcript := capture.NewTranscript(capture.TranscriptConfig{})
	windows := capture.NewWindowTracker()
	return handlers.NewCaptureHandlers(transcript, windows, nil), transcript, windows
}

func TestPostFrame_IngestsTextAndWindow(t *testing.T) {
	h, transcript, windows := newCaptureHandlers()

	body := `{"text":"Build succeeded in 2.1s","window":{"title":"Terminal","process_name":"zsh"}}`
	req := httptest.NewRequest("POST", "/api/capture/frame", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.PostFrame(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "Build succeeded in 2.1s", transcript.Render())
	assert.Equal(t, "Active window: Terminal (process: zsh)", windows.InfoLine())
}

func TestPostFrame_InvalidBody(t *testing.T) {
	h, _, _ := newCaptureHandlers()

	req := httptest.NewRequest("POST", "/api/capture/frame", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	h.PostFrame(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestPostFrame_KeepsWindowWhenFrameOmitsIt(t *testing.T) {
	h, _, windows := newCaptureHandlers()

	first := `{"text":"frame one","window":{"title":"Chrome"}}`
	req := httptest.NewRequest("POST", "/api/capture/frame", strings.NewReader(first))
	h.PostFrame(httptest.NewRecorder(), req)

	second := `{"text":"frame two"}`
	req = httptest.NewRequest("POST", "/api/capture/frame", strings.NewReader(second))
	h.PostFrame(httptest.NewRecorder(), req)

	assert.Equal(t, "Active window: Chrome", windows.InfoLine())
}

func TestPostLive_TogglesFlag(t *testing.T) {
	h, transcript, _ := newCaptureHandlers()

	req := httptest.NewRequest("POST", "/api/capture/live", strings.NewReader(`{"live":true}`))
	w := httptest.NewRecorder()
	h.PostLive(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, transcript.Live())

	req = httptest.NewRequest("POST", "/api/capture/live", strings.NewReader(`{"live":false}`))
	h.PostLive(httptest.NewRecorder(), req)
	assert.False(t, transcript.Live())
}

func TestGetTranscript(t *testing.T) {
	h, transcript, _ := newCaptureHandlers()
	transcript.Append("hello from the screen")
	transcript.SetLive(true)

	req := httptest.NewRequest("GET", "/api/capture/transcript", nil)
	w := httptest.NewRecorder()
	h.GetTranscript(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello from the screen")
	assert.Contains(t, w.Body.String(), `"live":true`)
}

func TestDeleteTranscript(t *testing.T) {
	h, transcript, _ := newCaptureHandlers()
	transcript.Append("something sensitive")

	req := httptest.NewRequest("DELETE", "/api/capture/transcript", nil)
	w := httptest.NewRecorder()
	h.DeleteTranscript(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, transcript.Render())
}
