package llm

import (
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpselabs/glimpse/internal/engine"
	"github.com/glimpselabs/glimpse/pkg/types"
)

func TestBuildMessages_FullContext(t *testing.T) {
	fused := engine.FusedContext{
		PrimaryContext:    "Screen Content (OCR):\nsome text",
		SupportingContext: "Web Search Results:\nsome hits",
		RelevanceSummary:  "Context analysis: 1 high-relevance sources",
		FusionStrategy:    "Primary: screen (high relevance), Supporting: 1 sources",
	}
	history := []types.Message{
		{Role: "user", Content: "earlier question", Timestamp: time.Now()},
		{Role: "assistant", Content: "earlier answer", Timestamp: time.Now()},
	}

	messages := BuildMessages("You are a helpful assistant.", fused, history, "what does it say?")

	require.Len(t, messages, 7)

	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.True(t, strings.HasPrefix(messages[0].Content, "You are a helpful assistant."))
	assert.Contains(t, messages[0].Content, "CONTEXT ANALYSIS: Context analysis: 1 high-relevance sources")
	assert.Contains(t, messages[0].Content, "FUSION STRATEGY: Primary: screen")
	assert.Contains(t, messages[0].Content, "INSTRUCTIONS FOR CONTEXT USAGE:")

	assert.Equal(t, "earlier question", messages[1].Content)
	assert.Equal(t, "earlier answer", messages[2].Content)

	assert.Equal(t, "PRIMARY CONTEXT (Most Relevant):\nScreen Content (OCR):\nsome text", messages[3].Content)
	assert.Equal(t, "SUPPORTING CONTEXT:\nWeb Search Results:\nsome hits", messages[4].Content)
	assert.Equal(t, "CONTEXT ANALYSIS: Context analysis: 1 high-relevance sources", messages[5].Content)

	last := messages[len(messages)-1]
	assert.Equal(t, openai.ChatMessageRoleUser, last.Role)
	assert.Equal(t, "USER QUERY: what does it say?", last.Content)
}

func TestBuildMessages_NoContext(t *testing.T) {
	messages := BuildMessages("system prompt", engine.FusedContext{}, nil, "hello")

	require.Len(t, messages, 2)
	assert.Equal(t, "system prompt", messages[0].Content)
	assert.NotContains(t, messages[0].Content, "INSTRUCTIONS FOR CONTEXT USAGE")
	assert.Equal(t, "USER QUERY: hello", messages[1].Content)
}

func TestBuildMessages_EmptySummarySkipped(t *testing.T) {
	fused := engine.FusedContext{
		PrimaryContext:   "No relevant context available for this query.",
		RelevanceSummary: "No context sources analyzed",
	}

	messages := BuildMessages("sys", fused, nil, "q")

	for _, msg := range messages[1:] {
		assert.False(t, strings.HasPrefix(msg.Content, "CONTEXT ANALYSIS:"),
			"summary message should be skipped, got %q", msg.Content)
	}
}

func TestBuildMessages_QueryAlwaysLast(t *testing.T) {
	fused := engine.FusedContext{PrimaryContext: "ctx", RelevanceSummary: "Context analysis: 1 low-relevance sources"}
	messages := BuildMessages("sys", fused, []types.Message{{Role: "user", Content: "old"}}, "new question")

	last := messages[len(messages)-1]
	assert.Equal(t, "USER QUERY: new question", last.Content)
}
