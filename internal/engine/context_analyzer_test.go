package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer() *ContextAnalyzer {
	return NewContextAnalyzer(NewOptimizer(DefaultOptimizerConfig()))
}

func TestAnalyzeQuery_Empty(t *testing.T) {
	analyzer := newTestAnalyzer()

	decision := analyzer.AnalyzeQuery("   ", "", false)
	assert.Equal(t, QueryConversational, decision.QueryType)
	assert.False(t, decision.UseOCR)
	assert.False(t, decision.UseWeb)
	assert.Zero(t, decision.Confidence)
	assert.Equal(t, "Empty query", decision.Reasoning)
}

func TestAnalyzeQuery_ScreenRelated(t *testing.T) {
	analyzer := newTestAnalyzer()

	decision := analyzer.AnalyzeQuery(
		"What's this error message on my screen?",
		"Active window: Terminal",
		true,
	)

	assert.Equal(t, QueryScreenRelated, decision.QueryType)
	assert.True(t, decision.UseOCR)
	assert.Contains(t, decision.Reasoning, "Screen-related query")
	assert.Greater(t, decision.Confidence, 0.5)
}

func TestAnalyzeQuery_CurrentEvents(t *testing.T) {
	analyzer := newTestAnalyzer()

	decision := analyzer.AnalyzeQuery("What are the latest developments in AI today?", "", false)

	assert.Equal(t, QueryCurrentEvents, decision.QueryType)
	assert.True(t, decision.UseWeb)
	assert.False(t, decision.UseOCR)
	require.NotNil(t, decision.SearchParams)
	assert.Equal(t, "d", decision.SearchParams.TimeLimit)
	assert.Contains(t, decision.Reasoning, "Override: time-sensitive information needed")
}

func TestAnalyzeQuery_Conversational(t *testing.T) {
	analyzer := newTestAnalyzer()

	decision := analyzer.AnalyzeQuery("hello there, please look at this", "", false)

	assert.Equal(t, QueryConversational, decision.QueryType)
	assert.False(t, decision.UseOCR)
	assert.False(t, decision.UseWeb)
	assert.InDelta(t, 0.9, decision.Confidence, 1e-9)
	assert.Contains(t, decision.Reasoning, "Conversational query")
}

func TestAnalyzeQuery_BothGatesDenied(t *testing.T) {
	analyzer := newTestAnalyzer()

	// Too short for either gate: the analyzer short-circuits to a general
	// question with the optimizer's reasons.
	decision := analyzer.AnalyzeQuery("ok", "", false)

	assert.Equal(t, QueryGeneralQuestion, decision.QueryType)
	assert.False(t, decision.UseOCR)
	assert.False(t, decision.UseWeb)
	assert.InDelta(t, 0.8, decision.Confidence, 1e-9)
	assert.Contains(t, decision.Reasoning, "Performance optimization:")
	assert.Contains(t, decision.Reasoning, "Query too short")
}

func TestAnalyzeQuery_DemonstrativeOverride(t *testing.T) {
	analyzer := newTestAnalyzer()

	decision := analyzer.AnalyzeQuery("help me with this", "Active window: Photos", true)

	assert.True(t, decision.UseOCR)
	assert.Contains(t, decision.Reasoning, "Override: demonstrative reference detected")
}

func TestAnalyzeQuery_TechnicalInfo(t *testing.T) {
	analyzer := newTestAnalyzer()

	decision := analyzer.AnalyzeQuery("how do I configure the database api", "", false)

	assert.Equal(t, QueryTechnicalInfo, decision.QueryType)
	assert.True(t, decision.UseWeb)
	require.NotNil(t, decision.SearchParams)
	assert.Equal(t, 3, decision.SearchParams.MaxResults)
}

func TestAnalyzeQuery_ReasoningNeverEmpty(t *testing.T) {
	analyzer := newTestAnalyzer()

	for _, q := range []string{
		"", "hi", "what is the capital of france",
		"click this button", "latest news", "python error on screen",
	} {
		decision := analyzer.AnalyzeQuery(q, "", false)
		assert.NotEmpty(t, decision.Reasoning, "query %q", q)
	}
}

func TestClassifyQuery_Cascade(t *testing.T) {
	cases := []struct {
		name                                      string
		screen, web, time, technical, convo       float64
		question, demonstrative, currentReference bool
		want                                      QueryType
	}{
		{name: "conversational wins", convo: 0.4, screen: 0.5, want: QueryConversational},
		{name: "screen keywords", screen: 0.2, want: QueryScreenRelated},
		{name: "demonstrative plus current", demonstrative: true, currentReference: true, want: QueryScreenRelated},
		{name: "current events", time: 0.2, web: 0.1, want: QueryCurrentEvents},
		{name: "technical", technical: 0.2, want: QueryTechnicalInfo},
		{name: "web needed", web: 0.1, want: QueryWebSearchNeeded},
		{name: "fallback general", want: QueryGeneralQuestion},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, confidence := classifyQuery(tc.screen, tc.web, tc.time, tc.technical, tc.convo,
				tc.question, tc.demonstrative, tc.currentReference)
			assert.Equal(t, tc.want, got)
			assert.Greater(t, confidence, 0.0)
			assert.LessOrEqual(t, confidence, 0.9)
		})
	}
}
