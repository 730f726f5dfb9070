package engine

import (
	"sync"
	"time"
)

// callWindow is a sliding-window call counter: at most limit calls per
// window. Unlike a token bucket it enforces the exact per-window count, which
// is what the OCR/web budgets are specified as.
type callWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	calls  []time.Time
}

func newCallWindow(limit int, window time.Duration, now func() time.Time) *callWindow {
	if now == nil {
		now = time.Now
	}
	return &callWindow{limit: limit, window: window, now: now}
}

// allow records a call and reports whether it fits in the window. Calls that
// do not fit are not recorded.
func (w *callWindow) allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	cutoff := now.Add(-w.window)

	kept := w.calls[:0]
	for _, t := range w.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.calls = kept

	if len(w.calls) >= w.limit {
		return false
	}
	w.calls = append(w.calls, now)
	return true
}
