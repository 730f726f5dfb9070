package capture

import (
	"strings"
	"sync"
	"time"

	"github.com/glimpselabs/glimpse/pkg/types"
)

// TranscriptConfig bounds the live OCR transcript.
type TranscriptConfig struct {
	// MaxHistory is the number of OCR snapshots retained.
	MaxHistory int

	// MaxChars caps the rendered transcript length; older text is dropped
	// first.
	MaxChars int

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// DefaultTranscriptConfig returns the production defaults.
func DefaultTranscriptConfig() TranscriptConfig {
	return TranscriptConfig{
		MaxHistory: 200,
		MaxChars:   3000,
	}
}

// Transcript is a bounded ring of timed OCR snapshots with capture stats and
// a live-mode flag. Safe for concurrent use: the capture loop appends while
// chat requests render.
type Transcript struct {
	cfg TranscriptConfig
	now func() time.Time

	mu        sync.Mutex
	snapshots []types.OCRSnapshot
	live      bool
	stats     types.CaptureStats
}

// NewTranscript returns an empty transcript buffer.
func NewTranscript(cfg TranscriptConfig) *Transcript {
	def := DefaultTranscriptConfig()
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = def.MaxHistory
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = def.MaxChars
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Transcript{cfg: cfg, now: now}
}

// Append records one OCR capture. Blank captures still count as a frame but
// are not stored.
func (t *Transcript) Append(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Frames++
	t.stats.OCRReady = true

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	t.stats.OCREvents++
	t.snapshots = append(t.snapshots, types.OCRSnapshot{Timestamp: t.now(), Text: text})
	if len(t.snapshots) > t.cfg.MaxHistory {
		t.snapshots = t.snapshots[len(t.snapshots)-t.cfg.MaxHistory:]
	}
}

// Render returns the most recent transcript text, newest last, capped at
// MaxChars with older text dropped first.
func (t *Transcript) Render() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.snapshots) == 0 {
		return ""
	}

	// Walk backwards until the budget is spent.
	var kept []string
	remaining := t.cfg.MaxChars
	for i := len(t.snapshots) - 1; i >= 0 && remaining > 0; i-- {
		text := t.snapshots[i].Text
		if len(text)+1 > remaining {
			break
		}
		kept = append(kept, text)
		remaining -= len(text) + 1
	}

	// Reverse into chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "\n")
}

// Latest returns the newest snapshot, if any.
func (t *Transcript) Latest() (types.OCRSnapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.snapshots) == 0 {
		return types.OCRSnapshot{}, false
	}
	return t.snapshots[len(t.snapshots)-1], true
}

// SetLive toggles live capture mode.
func (t *Transcript) SetLive(live bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live = live
}

// Live reports whether live capture mode is on.
func (t *Transcript) Live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// RecordError notes a capture failure in the stats.
func (t *Transcript) RecordError(err error) {
	if err == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.LastError = err.Error()
}

// Stats returns a copy of the capture stats.
func (t *Transcript) Stats() types.CaptureStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Clear drops all snapshots and resets stats.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshots = nil
	t.stats = types.CaptureStats{}
}
