package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/glimpselabs/glimpse/web/handlers"
)

func TestWebSocketHub_ValidatesOrigin(t *testing.T) {
	hub := handlers.NewWebSocketHub([]string{"localhost:8750"})
	defer hub.Stop()

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "http://evil.com")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")

	w := httptest.NewRecorder()
	hub.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebSocketHub_Broadcast(t *testing.T) {
	hub := handlers.NewWebSocketHub(nil)
	go hub.Run()
	defer hub.Stop()

	received := make(chan []byte, 1)
	mockClient := &handlers.MockClient{SendChan: received}

	hub.Register(mockClient)

	// Give the hub time to register the client.
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(handlers.Event{
		Type:      handlers.EventChat,
		Timestamp: time.Now(),
		Payload:   map[string]string{"query_type": "general_question"},
	})

	select {
	case msg := <-received:
		assert.Contains(t, string(msg), `"type":"chat"`)
		assert.Contains(t, string(msg), "general_question")
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for broadcast message")
	}
}

func TestWebSocketHub_DropsSlowClient(t *testing.T) {
	hub := handlers.NewWebSocketHub(nil)
	go hub.Run()
	defer hub.Stop()

	// Zero-capacity channel that is never read simulates a stalled client.
	mockClient := &handlers.MockClient{SendChan: make(chan []byte)}
	hub.Register(mockClient)
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(handlers.Event{Type: handlers.EventCaptureFrame, Timestamp: time.Now()})
	time.Sleep(10 * time.Millisecond)

	// The stalled client was unregistered and its channel closed.
	_, open := <-mockClient.SendChan
	assert.False(t, open)
}
