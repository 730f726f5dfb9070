package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when the breaker rejects a chat call because the
// upstream model endpoint has been failing.
var ErrCircuitOpen = errors.New("chat circuit breaker is open")

// breakerConfig tunes the chat circuit breaker.
type breakerConfig struct {
	// maxFailures is the number of consecutive failures that trips the
	// circuit.
	maxFailures uint32

	// timeout is how long the circuit stays open before probing again.
	timeout time.Duration

	// halfOpenSuccesses closes the circuit after this many consecutive
	// successful probes.
	halfOpenSuccesses uint32
}

func defaultBreakerConfig() breakerConfig {
	return breakerConfig{
		maxFailures:       3,
		timeout:           30 * time.Second,
		halfOpenSuccesses: 2,
	}
}

// chatBreaker wraps gobreaker around the chat-completion call so a dead or
// overloaded model endpoint fails fast instead of stalling every request.
type chatBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

func newChatBreaker(cfg breakerConfig) *chatBreaker {
	settings := gobreaker.Settings{
		Name:        "chat-completions",
		MaxRequests: cfg.halfOpenSuccesses,
		Timeout:     cfg.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.maxFailures
		},
	}
	return &chatBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// execute runs fn through the breaker, mapping the breaker's own rejections
// to ErrCircuitOpen.
func (b *chatBreaker) execute(ctx context.Context, fn func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	result, err := b.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrCircuitOpen
		}
		return "", err
	}
	return result.(string), nil
}
