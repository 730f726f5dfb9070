package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreContentRelevance_EmptyInputs(t *testing.T) {
	scorer := NewRelevanceScorer()

	for _, tc := range []struct {
		name    string
		query   string
		content string
	}{
		{"empty query", "", "some content"},
		{"empty content", "some query", ""},
		{"whitespace query", "   ", "some content"},
		{"both empty", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			score := scorer.ScoreContentRelevance(tc.query, tc.content, ContentOCRText, nil)
			assert.Zero(t, score.Total)
			assert.Zero(t, score.Keyword)
			assert.Zero(t, score.Semantic)
			assert.Zero(t, score.Context)
			assert.Zero(t, score.Confidence)
			assert.Equal(t, "Empty content or query", score.Explanation)
		})
	}
}

func TestScoreContentRelevance_Bounds(t *testing.T) {
	scorer := NewRelevanceScorer()
	info := &ContextInfo{WindowInfo: "Active window: Chrome (process: chrome)"}

	queries := []string{
		"click the submit button on this screen",
		"what is the latest news about chrome",
		"python programming help",
		"zzz qqq xxx",
	}
	contents := []string{
		"Submit button form click here chrome",
		"unrelated text about gardening",
	}

	for _, q := range queries {
		for _, c := range contents {
			for _, ct := range []ContentType{ContentOCRText, ContentWebResult, ContentWindowInfo} {
				score := scorer.ScoreContentRelevance(q, c, ct, info)
				assert.GreaterOrEqual(t, score.Total, 0.0)
				assert.LessOrEqual(t, score.Total, 1.0)
				assert.GreaterOrEqual(t, score.Confidence, 0.0)
				assert.LessOrEqual(t, score.Confidence, 1.0)
				assert.NotEmpty(t, score.Explanation)
			}
		}
	}
}

func TestKeywordRelevance_CategoryBoost(t *testing.T) {
	scorer := NewRelevanceScorer()

	// One of four query words matches (0.25), the query names a UI element
	// and an action (+0.3 for OCR), and "button" adds a partial match (+0.1).
	got := scorer.keywordRelevance("click the big red button", "a button is visible", ContentOCRText)
	assert.InDelta(t, 0.65, got, 1e-9)

	// The same words scored as a web result get no category boost: the
	// query has no information or time-sensitive keywords.
	web := scorer.keywordRelevance("click the big red button", "a button is visible", ContentWebResult)
	assert.InDelta(t, 0.35, web, 1e-9)
}

func TestKeywordRelevance_NoQueryWords(t *testing.T) {
	scorer := NewRelevanceScorer()
	// Query made entirely of stop words.
	got := scorer.keywordRelevance("the and of", "anything at all", ContentOCRText)
	assert.Zero(t, got)
}

func TestSemanticRelevance_ConceptAdjacency(t *testing.T) {
	scorer := NewRelevanceScorer()

	// "python" maps onto programming/script/language/code; three of those
	// appear in the content, none of the literal query words do.
	got := scorer.semanticRelevance("python help", "a programming language script")
	assert.InDelta(t, 0.3, got, 1e-9)
}

func TestSemanticRelevance_PhraseCap(t *testing.T) {
	scorer := NewRelevanceScorer()
	// Every query word longer than two chars appears verbatim; the phrase
	// component caps at 0.6.
	got := scorer.semanticRelevance("alpha beta gamma delta epsilon", "alpha beta gamma delta epsilon")
	assert.InDelta(t, 0.6, got, 1e-9)
}

func TestContextRelevance_DeicticBoost(t *testing.T) {
	scorer := NewRelevanceScorer()
	info := &ContextInfo{WindowInfo: "Active window: Chrome"}

	got := scorer.contextRelevance("what is this", "some screen text", ContentOCRText, info)
	assert.InDelta(t, 0.4, got, 1e-9)

	// Naming the app in the query adds the window-match boost on top.
	got = scorer.contextRelevance("open chrome here", "some screen text", ContentOCRText, info)
	assert.InDelta(t, 0.7, got, 1e-9)
}

func TestContextRelevance_NoWindowInfo(t *testing.T) {
	scorer := NewRelevanceScorer()
	assert.Zero(t, scorer.contextRelevance("what is this", "text", ContentOCRText, nil))
	assert.Zero(t, scorer.contextRelevance("what is this", "text", ContentOCRText, &ContextInfo{}))
}

func TestFreshnessPerContentType(t *testing.T) {
	scorer := NewRelevanceScorer()
	ocr := scorer.ScoreContentRelevance("query words", "content words", ContentOCRText, nil)
	web := scorer.ScoreContentRelevance("query words", "content words", ContentWebResult, nil)
	win := scorer.ScoreContentRelevance("query words", "content words", ContentWindowInfo, nil)

	assert.InDelta(t, 1.0, ocr.Freshness, 1e-9)
	assert.InDelta(t, 0.8, web.Freshness, 1e-9)
	assert.InDelta(t, 0.5, win.Freshness, 1e-9)
}

func TestConfidence(t *testing.T) {
	assert.InDelta(t, 0.3, confidence(0, 0, 0), 1e-9)
	assert.InDelta(t, 0.35, confidence(0.5, 0, 0), 1e-9)
	// Two agreeing signals: mean + 0.2, capped at 0.9.
	assert.InDelta(t, 0.7, confidence(0.6, 0.4, 0), 1e-9)
	assert.InDelta(t, 0.9, confidence(0.9, 0.9, 0.9), 1e-9)
}

func TestExplain(t *testing.T) {
	assert.Equal(t,
		"Relevant due to: strong keyword matches, current information",
		explain(0.6, 0, 0, 1.0, ContentOCRText))

	assert.Equal(t,
		"Relevant due to: some keyword matches, semantic relevance, contextual relevance",
		explain(0.3, 0.4, 0.4, 0.5, ContentWebResult))

	assert.Equal(t, "Low relevance for ocr_text", explain(0.1, 0.1, 0.1, 0.5, ContentOCRText))
}

func TestScoreDeterministic(t *testing.T) {
	scorer := NewRelevanceScorer()
	info := &ContextInfo{WindowInfo: "Active window: VS Code (process: code)"}

	a := scorer.ScoreContentRelevance("fix this error", "Traceback: ValueError in line 3", ContentOCRText, info)
	b := scorer.ScoreContentRelevance("fix this error", "Traceback: ValueError in line 3", ContentOCRText, info)
	assert.Equal(t, a, b)
}
