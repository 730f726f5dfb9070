// Package server provides HTTP server initialization and lifecycle management
// for the Glimpse assistant API.
package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/glimpselabs/glimpse/internal/assistant"
	"github.com/glimpselabs/glimpse/internal/capture"
	"github.com/glimpselabs/glimpse/internal/config"
	"github.com/glimpselabs/glimpse/internal/engine"
	"github.com/glimpselabs/glimpse/internal/memory"
	"github.com/glimpselabs/glimpse/web/handlers"
)

// Deps bundles the collaborators the HTTP layer exposes. Model may be nil
// when no backend is configured; chat then fails with 503.
type Deps struct {
	Assistant  *assistant.Assistant
	Optimizer  *engine.Optimizer
	Memory     *memory.ConversationMemory
	Transcript *capture.Transcript
	Windows    *capture.WindowTracker
	Model      handlers.ModelStatus
	Logger     *slog.Logger
	Version    string
}

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start initializes and starts the HTTP server.
// Returns the actual address being listened on (useful for testing with
// port 0) and the WebSocketHub for wiring capture event broadcasts.
func Start(ctx context.Context, cfg *config.Config, deps Deps) (string, *handlers.WebSocketHub) {
	mux := http.NewServeMux()

	selfOrigin := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	wsHub := handlers.NewWebSocketHub([]string{selfOrigin, "localhost:" + fmt.Sprint(cfg.Server.Port)})
	go wsHub.Run()

	rateLimiter := handlers.NewRateLimiter(10.0, 20)

	chatHandlers := handlers.NewChatHandlers(deps.Assistant, wsHub, deps.Logger)
	captureHandlers := handlers.NewCaptureHandlers(deps.Transcript, deps.Windows, wsHub)
	sessionHandlers := handlers.NewSessionHandlers(deps.Memory)
	statusHandlers := handlers.NewStatusHandlers(deps.Model, deps.Optimizer, deps.Transcript, deps.Memory, deps.Version)

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			chatHandlers.PostChat(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/context/decision", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			chatHandlers.GetDecision(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/api/capture/frame", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			captureHandlers.PostFrame(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/capture/live", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			captureHandlers.PostLive(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/capture/transcript", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			captureHandlers.GetTranscript(w, r)
		case http.MethodDelete:
			captureHandlers.DeleteTranscript(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/capture/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			captureHandlers.GetStats(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sessionHandlers.GetStats(w, r)
		case http.MethodDelete:
			sessionHandlers.DeleteAll(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/sessions/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			sessionHandlers.GetHistory(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/sessions/{id}/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			sessionHandlers.GetSummary(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/sessions/{id}/anonymize", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sessionHandlers.PostAnonymize(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			sessionHandlers.DeleteSession(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			statusHandlers.GetStatus(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			statusHandlers.GetMetrics(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/metrics/cache/cleanup", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statusHandlers.PostCacheCleanup(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/metrics/cache", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			statusHandlers.DeleteCache(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Health endpoint, no auth required, used by the capture agent and monitoring
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			statusHandlers.GetHealth(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Wrap API routes with auth middleware
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoint (no auth required, origin validation handles security)
	mux.Handle("/ws", wsHub)

	// Wrap entire server with rate limiting, then security headers
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = securityHeadersMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		wsHub.Stop()
	}()

	return actualAddr, wsHub
}
