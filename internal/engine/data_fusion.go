package engine

import (
	"fmt"
	"strings"
)

// Truncation caps per source type. Full-length formatting is used for
// primary and high-relevance supporting context, brief for everything else.
const (
	screenFullLimit  = 1500
	screenBriefLimit = 500
	webFullLimit     = 2000
	webBriefLimit    = 600
	otherFullLimit   = 1000
)

// noRelevantContext is the sentinel primary context when every source scored
// below the LOW threshold.
const noRelevantContext = "No relevant context available for this query."

// DataFusion merges the scored context sources of one chat turn into a
// bounded, prioritized bundle. FuseContexts is a pure function of its string
// inputs; a single DataFusion is safe for concurrent use.
type DataFusion struct {
	scorer *RelevanceScorer
}

// NewDataFusion returns a fusion engine delegating scoring to scorer.
func NewDataFusion(scorer *RelevanceScorer) *DataFusion {
	return &DataFusion{scorer: scorer}
}

// scoredSource pairs one context source with its relevance verdict.
type scoredSource struct {
	contentType ContentType
	data        string
	relevance   ContextRelevance
}

// AnalyzeRelevance scores one context source against the query and buckets
// the result into a RelevanceLevel. Blank data is IRRELEVANT, never an error.
func (f *DataFusion) AnalyzeRelevance(query, data string, contentType ContentType, info *ContextInfo) ContextRelevance {
	if strings.TrimSpace(data) == "" {
		return ContextRelevance{
			Level:     RelevanceIrrelevant,
			Reasoning: "No context data available",
		}
	}

	score := f.scorer.ScoreContentRelevance(query, data, contentType, info)

	reasoning := fmt.Sprintf("%s (Total: %.2f, Keywords: %.2f, Semantic: %.2f, Context: %.2f, Confidence: %.2f)",
		score.Explanation, score.Total, score.Keyword, score.Semantic, score.Context, score.Confidence)

	return ContextRelevance{
		Level:     levelForScore(score.Total),
		Score:     score.Total,
		Reasoning: reasoning,
	}
}

// FuseContexts scores the screen, web, and window sources and builds the
// primary/supporting context bundle per the selection policy:
//
//   - any HIGH source: top HIGH is primary (full), remaining HIGH sources are
//     supporting (full), plus at most one MEDIUM source (brief)
//   - else any MEDIUM: top MEDIUM is primary (full), at most one more MEDIUM
//     is supporting (brief)
//   - else a LOW top source becomes a brief primary with no supporting
//   - else the sentinel "no relevant context" primary
func (f *DataFusion) FuseContexts(query, screenText, webResults, windowInfo string) FusedContext {
	var info *ContextInfo
	if windowInfo != "" {
		info = &ContextInfo{WindowInfo: windowInfo}
	}

	sources := []scoredSource{
		{ContentOCRText, screenText, f.AnalyzeRelevance(query, screenText, ContentOCRText, info)},
		{ContentWebResult, webResults, f.AnalyzeRelevance(query, webResults, ContentWebResult, info)},
		{ContentWindowInfo, windowInfo, f.AnalyzeRelevance(query, windowInfo, ContentWindowInfo, info)},
	}

	// Stable sort, descending by score. Three elements: insertion sort keeps
	// the screen > web > window priority on ties.
	for i := 1; i < len(sources); i++ {
		for j := i; j > 0 && sources[j].relevance.Score > sources[j-1].relevance.Score; j-- {
			sources[j], sources[j-1] = sources[j-1], sources[j]
		}
	}

	var high, medium []scoredSource
	for _, src := range sources {
		switch src.relevance.Level {
		case RelevanceHigh:
			high = append(high, src)
		case RelevanceMedium:
			medium = append(medium, src)
		}
	}

	var primary, supporting, strategy string

	switch {
	case len(high) > 0:
		primary = formatContext(high[0].contentType, high[0].data, false)
		for _, src := range high[1:] {
			supporting = appendContext(supporting, formatContext(src.contentType, src.data, false))
		}
		supportingCount := len(high) - 1
		if len(medium) > 0 {
			supporting = appendContext(supporting, formatContext(medium[0].contentType, medium[0].data, true))
			supportingCount++
		}
		strategy = fmt.Sprintf("Primary: %s (high relevance), Supporting: %d sources",
			high[0].contentType.sourceName(), supportingCount)

	case len(medium) > 0:
		primary = formatContext(medium[0].contentType, medium[0].data, false)
		supportingCount := 0
		if len(medium) > 1 {
			supporting = appendContext(supporting, formatContext(medium[1].contentType, medium[1].data, true))
			supportingCount = 1
		}
		strategy = fmt.Sprintf("Primary: %s (medium relevance), Supporting: %d sources",
			medium[0].contentType.sourceName(), supportingCount)

	case sources[0].relevance.Level != RelevanceIrrelevant:
		primary = formatContext(sources[0].contentType, sources[0].data, true)
		strategy = fmt.Sprintf("Limited context: %s (low relevance)", sources[0].contentType.sourceName())

	default:
		primary = noRelevantContext
		strategy = "No context fusion - insufficient relevance"
	}

	relevances := make([]ContextRelevance, len(sources))
	for i, src := range sources {
		relevances[i] = src.relevance
	}

	return FusedContext{
		PrimaryContext:    primary,
		SupportingContext: supporting,
		RelevanceSummary:  relevanceSummary(relevances),
		FusionStrategy:    strategy,
	}
}

func appendContext(existing, formatted string) string {
	if formatted == "" {
		return existing
	}
	if existing == "" {
		return formatted
	}
	return existing + "\n\n" + formatted
}

// formatContext renders one source with its fixed header, truncated to the
// type-specific cap.
func formatContext(contentType ContentType, data string, brief bool) string {
	if strings.TrimSpace(data) == "" {
		return ""
	}

	var header string
	var limit int
	switch contentType {
	case ContentOCRText:
		header = "Screen Content (OCR):"
		limit = screenFullLimit
		if brief {
			limit = screenBriefLimit
		}
	case ContentWebResult:
		header = "Web Search Results:"
		limit = webFullLimit
		if brief {
			limit = webBriefLimit
		}
	case ContentWindowInfo:
		// Window info is brief already; never truncated.
		return "Active Window:\n" + data
	default:
		header = "Context:"
		limit = otherFullLimit
	}

	return header + "\n" + truncate(data, limit)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// relevanceSummary narrates how many sources landed in each bucket.
func relevanceSummary(relevances []ContextRelevance) string {
	var high, medium, low int
	for _, r := range relevances {
		switch r.Level {
		case RelevanceHigh:
			high++
		case RelevanceMedium:
			medium++
		case RelevanceLow:
			low++
		}
	}

	var parts []string
	if high > 0 {
		parts = append(parts, fmt.Sprintf("%d high-relevance", high))
	}
	if medium > 0 {
		parts = append(parts, fmt.Sprintf("%d medium-relevance", medium))
	}
	if low > 0 {
		parts = append(parts, fmt.Sprintf("%d low-relevance", low))
	}

	if len(parts) == 0 {
		return "Context analysis: No relevant sources found"
	}
	return fmt.Sprintf("Context analysis: %s sources", strings.Join(parts, ", "))
}
