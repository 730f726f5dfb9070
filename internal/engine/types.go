// Package engine implements the context relevance and fusion pipeline: it
// decides which context sources (screen OCR, web search, window metadata) are
// worth fetching for a query, scores each source with weighted lexical
// heuristics, and merges the survivors into a bounded, prioritized prompt
// payload. A caching and rate-limiting layer avoids paying for redundant
// OCR and web-search calls.
package engine

// ContentType identifies the kind of content being scored. It selects the
// scoring weight table and the freshness baseline.
type ContentType int

const (
	ContentOCRText ContentType = iota
	ContentWebResult
	ContentWindowInfo
)

// String returns the wire name of the content type.
func (c ContentType) String() string {
	switch c {
	case ContentOCRText:
		return "ocr_text"
	case ContentWebResult:
		return "web_result"
	case ContentWindowInfo:
		return "window_info"
	default:
		return "unknown"
	}
}

// sourceName is the short label used in fusion strategy narration.
func (c ContentType) sourceName() string {
	switch c {
	case ContentOCRText:
		return "screen"
	case ContentWebResult:
		return "web"
	default:
		return "window"
	}
}

// RelevanceLevel is the coarse bucket derived from a continuous relevance
// score. Thresholds: HIGH >= 0.7, MEDIUM >= 0.4, LOW >= 0.2.
type RelevanceLevel int

const (
	RelevanceIrrelevant RelevanceLevel = iota
	RelevanceLow
	RelevanceMedium
	RelevanceHigh
)

// String returns the display name of the relevance level.
func (l RelevanceLevel) String() string {
	switch l {
	case RelevanceHigh:
		return "high"
	case RelevanceMedium:
		return "medium"
	case RelevanceLow:
		return "low"
	default:
		return "irrelevant"
	}
}

// levelForScore maps a total relevance score onto its coarse bucket.
func levelForScore(score float64) RelevanceLevel {
	switch {
	case score >= 0.7:
		return RelevanceHigh
	case score >= 0.4:
		return RelevanceMedium
	case score >= 0.2:
		return RelevanceLow
	default:
		return RelevanceIrrelevant
	}
}

// QueryType classifies a user query to decide which context sources it needs.
type QueryType int

const (
	QueryGeneralQuestion QueryType = iota
	QueryScreenRelated
	QueryWebSearchNeeded
	QueryCurrentEvents
	QueryTechnicalInfo
	QueryMixedContext
	QueryConversational
)

// String returns the wire name of the query type.
func (q QueryType) String() string {
	switch q {
	case QueryScreenRelated:
		return "screen_related"
	case QueryWebSearchNeeded:
		return "web_search_needed"
	case QueryCurrentEvents:
		return "current_events"
	case QueryTechnicalInfo:
		return "technical_info"
	case QueryMixedContext:
		return "mixed_context"
	case QueryConversational:
		return "conversational"
	default:
		return "general_question"
	}
}

// RelevanceScore is the detailed breakdown produced by the scorer for one
// (query, content, content type) tuple. All components are in [0.0, 1.0].
type RelevanceScore struct {
	Total       float64
	Keyword     float64
	Semantic    float64
	Context     float64
	Freshness   float64
	Confidence  float64
	Explanation string
}

// ContextRelevance is the bucketed relevance verdict for one context source.
type ContextRelevance struct {
	Level      RelevanceLevel
	Score      float64
	Reasoning  string
	KeyMatches []string
}

// FusedContext is the bounded, prioritized context bundle handed to the
// prompt builder. It is an immutable value built once per chat turn.
type FusedContext struct {
	PrimaryContext    string
	SupportingContext string
	RelevanceSummary  string
	FusionStrategy    string
}

// SearchParams are the tunable web-search parameters attached to a context
// decision. TimeLimit uses the search backend's day/week/month/year codes
// ("d", "w", "m", "y").
type SearchParams struct {
	MaxResults int    `json:"max_results,omitempty"`
	SafeSearch string `json:"safesearch,omitempty"`
	TimeLimit  string `json:"timelimit,omitempty"`
}

// ContextDecision is the per-query determination of which external fetches
// should happen. Reasoning is always non-empty and traces the decision path.
type ContextDecision struct {
	UseOCR       bool
	UseWeb       bool
	QueryType    QueryType
	Confidence   float64
	Reasoning    string
	SearchParams *SearchParams
}

// ContextInfo carries optional ambient context into the scorer.
type ContextInfo struct {
	WindowInfo string
}
