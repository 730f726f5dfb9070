package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpselabs/glimpse/pkg/types"
)

func TestParseWindowInfo(t *testing.T) {
	info, ok := ParseWindowInfo("Active window: Terminal (process: zsh)")
	require.True(t, ok)
	assert.Equal(t, "Terminal", info.Title)
	assert.Equal(t, "zsh", info.ProcessName)

	info, ok = ParseWindowInfo("Active window: Chrome")
	require.True(t, ok)
	assert.Equal(t, "Chrome", info.Title)
	assert.Empty(t, info.ProcessName)

	_, ok = ParseWindowInfo("")
	assert.False(t, ok)

	_, ok = ParseWindowInfo("random text")
	assert.False(t, ok)
}

func TestParseWindowInfo_RoundTrip(t *testing.T) {
	orig := types.WindowInfo{Title: "Editor", ProcessName: "code"}
	parsed, ok := ParseWindowInfo(orig.String())
	require.True(t, ok)
	assert.Equal(t, orig, parsed)
}

func TestWindowTracker(t *testing.T) {
	tracker := NewWindowTracker()

	_, ok := tracker.Current()
	assert.False(t, ok)
	assert.Empty(t, tracker.InfoLine())

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tracker.Update(types.WindowInfo{Title: "Terminal", ProcessName: "zsh"}, now)

	current, ok := tracker.Current()
	require.True(t, ok)
	assert.Equal(t, "Terminal", current.Title)
	assert.Equal(t, "Active window: Terminal (process: zsh)", tracker.InfoLine())

	tracker.Update(types.WindowInfo{Title: "Chrome"}, now.Add(time.Second))
	assert.Equal(t, "Active window: Chrome", tracker.InfoLine())
}
