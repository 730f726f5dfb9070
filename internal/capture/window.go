// Package capture holds the desktop-facing edges of the assistant: active
// window metadata and the rolling OCR transcript. The raw screen grab and OCR
// call are injected collaborators; this package only buffers and shapes their
// output.
package capture

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/glimpselabs/glimpse/pkg/types"
)

var windowInfoPattern = regexp.MustCompile(`^Active window: (.+?)(?: \(process: ([^)]+)\))?$`)

// ParseWindowInfo parses the canonical window-info line back into its parts.
// Returns false for empty or unrecognized input.
func ParseWindowInfo(line string) (types.WindowInfo, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return types.WindowInfo{}, false
	}

	m := windowInfoPattern.FindStringSubmatch(line)
	if m == nil {
		return types.WindowInfo{}, false
	}
	return types.WindowInfo{
		Title:       strings.TrimSpace(m[1]),
		ProcessName: strings.TrimSpace(m[2]),
	}, true
}

// WindowTracker holds the most recently reported active window. The capture
// agent updates it; the assistant reads it on every turn.
type WindowTracker struct {
	mu      sync.RWMutex
	current types.WindowInfo
	updated time.Time
	set     bool
}

// NewWindowTracker creates an empty tracker.
func NewWindowTracker() *WindowTracker {
	return &WindowTracker{}
}

// Update records the active window.
func (t *WindowTracker) Update(info types.WindowInfo, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = info
	t.updated = now
	t.set = true
}

// Current returns the last reported window, if any.
func (t *WindowTracker) Current() (types.WindowInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, t.set
}

// InfoLine returns the canonical window-info line, or "" when no window has
// been reported yet.
func (t *WindowTracker) InfoLine() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.set {
		return ""
	}
	return t.current.String()
}
