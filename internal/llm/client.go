// Package llm wraps the chat-completion endpoint behind a circuit breaker
// and an optional response cache. The endpoint is OpenAI-compatible; the
// base URL is configurable so Cerebras-style providers work unchanged.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	openai "github.com/sashabaranov/go-openai"

	"github.com/glimpselabs/glimpse/internal/engine"
	"github.com/glimpselabs/glimpse/pkg/types"
)

// ErrNotAvailable is returned when no API key is configured.
var ErrNotAvailable = errors.New("chat client not available: missing API key")

// Config holds the model endpoint settings.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	TopP         float32
	MaxTokens    int
	SystemPrompt string

	// CacheResponses enables caching of completed answers keyed by the full
	// message payload.
	CacheResponses bool

	// ResponseCacheTTL bounds cached answers. Zero means 5 minutes.
	ResponseCacheTTL time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Model:            "llama3.1-8b",
		Temperature:      0.2,
		TopP:             0.9,
		MaxTokens:        2000,
		SystemPrompt:     "You are a helpful personal assistant. Be concise and helpful.",
		ResponseCacheTTL: 5 * time.Minute,
	}
}

// Client calls the chat-completion endpoint. Safe for concurrent use.
type Client struct {
	cfg     Config
	api     *openai.Client
	breaker *chatBreaker
	cache   *gocache.Cache
}

// NewClient builds a chat client from cfg. The client is constructed even
// without an API key; calls then fail with ErrNotAvailable so the assistant
// can degrade instead of crashing at startup.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = def.SystemPrompt
	}
	if cfg.ResponseCacheTTL <= 0 {
		cfg.ResponseCacheTTL = def.ResponseCacheTTL
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	c := &Client{
		cfg:     cfg,
		api:     openai.NewClientWithConfig(apiCfg),
		breaker: newChatBreaker(defaultBreakerConfig()),
	}
	if cfg.CacheResponses {
		c.cache = gocache.New(cfg.ResponseCacheTTL, 10*time.Minute)
	}
	return c
}

// Available reports whether the client has credentials to make calls.
func (c *Client) Available() bool {
	return c.cfg.APIKey != ""
}

// SystemPrompt returns the configured system prompt.
func (c *Client) SystemPrompt() string {
	return c.cfg.SystemPrompt
}

// Chat answers one turn using the fused context bundle and prior history.
func (c *Client) Chat(ctx context.Context, query string, fused engine.FusedContext, history []types.Message) (string, error) {
	messages := BuildMessages(c.cfg.SystemPrompt, fused, history, query)
	return c.complete(ctx, messages)
}

// ChatSimple answers a bare message with no context fusion. An empty
// systemPrompt falls back to the configured one.
func (c *Client) ChatSimple(ctx context.Context, message, systemPrompt string) (string, error) {
	if systemPrompt == "" {
		systemPrompt = c.cfg.SystemPrompt
	}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: message},
	}
	return c.complete(ctx, messages)
}

// TestConnection makes a minimal round-trip to verify credentials and
// endpoint reachability.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.ChatSimple(ctx, "Hello", "")
	return err
}

func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	if !c.Available() {
		return "", ErrNotAvailable
	}

	key := messagesKey(messages)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return cached.(string), nil
		}
	}

	answer, err := c.breaker.execute(ctx, func() (string, error) {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.cfg.Model,
			Messages:    messages,
			Temperature: c.cfg.Temperature,
			TopP:        c.cfg.TopP,
			MaxTokens:   c.cfg.MaxTokens,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("chat completion returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if c.cache != nil {
		c.cache.SetDefault(key, answer)
	}
	return answer, nil
}

// messagesKey hashes the full message payload for the response cache.
func messagesKey(messages []openai.ChatCompletionMessage) string {
	h := sha256.New()
	for _, m := range messages {
		h.Write([]byte(m.Role))
		h.Write([]byte{0x1f})
		h.Write([]byte(m.Content))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}
