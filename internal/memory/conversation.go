// Package memory provides bounded, per-session conversation history for
// prompt construction, with retention and anonymization policies. All state
// is in-memory; sessions live until the retention sweep or an explicit clear
// removes them.
package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glimpselabs/glimpse/pkg/types"
)

// sweepInterval caps how often the lazy retention sweep runs.
const sweepInterval = time.Hour

// summaryMinMessages is the session length above which a context summary is
// generated.
const summaryMinMessages = 10

// Redaction patterns applied by anonymization, in order.
var sensitivePatterns = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN]"},
	{regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), "[CARD]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL]"},
}

// Config tunes conversation memory behavior.
type Config struct {
	// Enabled toggles history recording entirely.
	Enabled bool

	// MaxContextMessages is the number of messages handed to the prompt
	// builder; sessions retain twice this many.
	MaxContextMessages int

	// RetentionHours is how long messages are kept before the sweep drops
	// them.
	RetentionHours int

	// Anonymize enables the sensitive-pattern redactions.
	Anonymize bool

	// AutoSummarize enables context summaries for long sessions.
	AutoSummarize bool

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		MaxContextMessages: 10,
		RetentionHours:     24,
	}
}

// Stats reports memory usage.
type Stats struct {
	ActiveSessions  int  `json:"active_sessions"`
	TotalMessages   int  `json:"total_messages"`
	SummariesCached int  `json:"summaries_cached"`
	Enabled         bool `json:"memory_enabled"`
}

// ConversationMemory holds bounded per-session message history. Sessions are
// keyed by a hash of the caller's window context. Safe for concurrent use.
type ConversationMemory struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	sessions  map[string][]types.Message
	summaries map[string]string
	lastSweep time.Time
}

// New returns an empty ConversationMemory.
func New(cfg Config) *ConversationMemory {
	if cfg.MaxContextMessages <= 0 {
		cfg.MaxContextMessages = DefaultConfig().MaxContextMessages
	}
	if cfg.RetentionHours <= 0 {
		cfg.RetentionHours = DefaultConfig().RetentionHours
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ConversationMemory{
		cfg:       cfg,
		now:       now,
		sessions:  make(map[string][]types.Message),
		summaries: make(map[string]string),
		lastSweep: now(),
	}
}

// SessionID derives a stable session key from the caller's context string.
// An empty context maps to the default session.
func SessionID(userContext string) string {
	if userContext == "" {
		userContext = "default"
	}
	sum := sha256.Sum256([]byte(userContext))
	return hex.EncodeToString(sum[:8])
}

// AddMessage appends one turn to the session, dropping the oldest turn when
// the session is at capacity. A no-op when memory is disabled.
func (m *ConversationMemory) AddMessage(sessionID, role, content string, metadata map[string]string) {
	if !m.cfg.Enabled {
		return
	}

	msg := types.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
		Metadata:  metadata,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	messages := append(m.sessions[sessionID], msg)
	if limit := m.cfg.MaxContextMessages * 2; len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	m.sessions[sessionID] = messages

	m.sweepLocked()
}

// History returns up to MaxContextMessages most recent messages for the
// session, optionally excluding system turns. Returns nil when memory is
// disabled or the session is unknown.
func (m *ConversationMemory) History(sessionID string, includeSystem bool) []types.Message {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}

	messages := make([]types.Message, 0, len(stored))
	for _, msg := range stored {
		if !includeSystem && msg.Role == "system" {
			continue
		}
		messages = append(messages, msg)
	}

	if len(messages) > m.cfg.MaxContextMessages {
		messages = messages[len(messages)-m.cfg.MaxContextMessages:]
	}
	return messages
}

// ContextSummary returns a short digest of the session's early and recent
// user turns. Only produced when auto-summarize is enabled and the session
// has accumulated more than summaryMinMessages turns.
func (m *ConversationMemory) ContextSummary(sessionID string) (string, bool) {
	if !m.cfg.AutoSummarize {
		return "", false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if summary, ok := m.summaries[sessionID]; ok {
		return summary, true
	}

	if len(m.sessions[sessionID]) <= summaryMinMessages {
		return "", false
	}

	summary := summarize(m.sessions[sessionID])
	if summary == "" {
		return "", false
	}
	m.summaries[sessionID] = summary
	return summary, true
}

// summarize digests the first three and last three user turns into one line.
// Each turn is clipped to 100 characters.
func summarize(messages []types.Message) string {
	var userTurns []string
	for _, msg := range messages {
		if msg.Role == "user" {
			userTurns = append(userTurns, msg.Content)
		}
	}
	if len(userTurns) == 0 {
		return ""
	}

	key := userTurns
	if len(userTurns) > 6 {
		key = append(append([]string{}, userTurns[:3]...), userTurns[len(userTurns)-3:]...)
	}

	clipped := make([]string, len(key))
	for i, turn := range key {
		if len(turn) > 100 {
			turn = turn[:100]
		}
		clipped[i] = turn
	}

	return fmt.Sprintf("Previous conversation topics: %s", strings.Join(clipped, "; "))
}

// ClearSession removes one session and its cached summary.
func (m *ConversationMemory) ClearSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	delete(m.summaries, sessionID)
}

// ClearAll removes every session.
func (m *ConversationMemory) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string][]types.Message)
	m.summaries = make(map[string]string)
}

// AnonymizeSession redacts sensitive patterns (SSN, card numbers, email
// addresses) from a session's stored content, in place. A no-op unless
// anonymization is enabled.
func (m *ConversationMemory) AnonymizeSession(sessionID string) {
	if !m.cfg.Anonymize {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	messages := m.sessions[sessionID]
	for i := range messages {
		content := messages[i].Content
		for _, p := range sensitivePatterns {
			content = p.pattern.ReplaceAllString(content, p.replacement)
		}
		messages[i].Content = content
	}
}

// Stats reports current memory usage.
func (m *ConversationMemory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, messages := range m.sessions {
		total += len(messages)
	}
	return Stats{
		ActiveSessions:  len(m.sessions),
		TotalMessages:   total,
		SummariesCached: len(m.summaries),
		Enabled:         m.cfg.Enabled,
	}
}

// sweepLocked drops messages older than the retention window and removes
// sessions left empty. Runs at most once per sweepInterval.
func (m *ConversationMemory) sweepLocked() {
	now := m.now()
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now

	cutoff := now.Add(-time.Duration(m.cfg.RetentionHours) * time.Hour)
	for sessionID, messages := range m.sessions {
		i := 0
		for i < len(messages) && messages[i].Timestamp.Before(cutoff) {
			i++
		}
		if i == len(messages) {
			delete(m.sessions, sessionID)
			delete(m.summaries, sessionID)
			continue
		}
		if i > 0 {
			m.sessions[sessionID] = messages[i:]
		}
	}
}
