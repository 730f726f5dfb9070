package engine

import (
	"fmt"
	"strings"
)

// ContextAnalyzer classifies a query into a QueryType and decides which
// context sources to invoke for it, consulting the Optimizer's gates so an
// expensive fetch is never recommended past its budget.
type ContextAnalyzer struct {
	optimizer *Optimizer
}

// NewContextAnalyzer returns an analyzer gated by optimizer.
func NewContextAnalyzer(optimizer *Optimizer) *ContextAnalyzer {
	return &ContextAnalyzer{optimizer: optimizer}
}

// AnalyzeQuery classifies query and produces the per-turn ContextDecision.
// Reasoning is always non-empty and traces the decision path, including any
// gate override.
func (a *ContextAnalyzer) AnalyzeQuery(query, windowInfo string, hasLiveOCR bool) ContextDecision {
	if strings.TrimSpace(query) == "" {
		return ContextDecision{
			QueryType: QueryConversational,
			Reasoning: "Empty query",
		}
	}

	shouldOCR, ocrReason := a.optimizer.ShouldUseOCR(query, windowInfo, false)
	shouldWeb, webReason := a.optimizer.ShouldUseWebSearch(query, false)

	if !shouldOCR && !shouldWeb {
		return ContextDecision{
			QueryType:  QueryGeneralQuestion,
			Confidence: 0.8,
			Reasoning:  fmt.Sprintf("Performance optimization: %s; %s", ocrReason, webReason),
		}
	}

	queryLower := strings.ToLower(query)
	queryWords := tokenSet(queryLower)

	screenScore := keywordScore(queryWords, analyzerScreenKeywords)
	webScore := keywordScore(queryWords, analyzerWebKeywords)
	timeScore := keywordScore(queryWords, analyzerTimeIndicators)
	technicalScore := keywordScore(queryWords, analyzerTechnicalKeywords)
	conversationalScore := keywordScore(queryWords, analyzerConversationalKeywords)

	hasQuestion := containsAny(queryLower, questionWords)
	hasDemonstrative := containsAny(queryLower, demonstrativeWords)
	hasCurrentReference := containsAny(queryLower, currentReferenceWords)

	queryType, confidence := classifyQuery(
		screenScore, webScore, timeScore, technicalScore, conversationalScore,
		hasQuestion, hasDemonstrative, hasCurrentReference,
	)

	decision := a.decide(queryType, confidence, queryLower, hasLiveOCR,
		shouldOCR, ocrReason, shouldWeb, webReason,
		screenScore, webScore, timeScore)

	a.applyOverrides(&decision, queryLower, shouldOCR, shouldWeb)
	return decision
}

// keywordScore is the fraction of query words that belong to the keyword
// set. Normalizing by query length keeps short pointed queries from being
// drowned out.
func keywordScore(queryWords wordSet, keywords wordSet) float64 {
	if len(queryWords) == 0 {
		return 0.0
	}
	return float64(queryWords.intersectionCount(keywords)) / float64(len(queryWords))
}

// classifyQuery runs the ordered rule cascade; the first matching rule wins.
func classifyQuery(screenScore, webScore, timeScore, technicalScore, conversationalScore float64,
	hasQuestion, hasDemonstrative, hasCurrentReference bool) (QueryType, float64) {

	switch {
	case conversationalScore > 0.3:
		return QueryConversational, 0.9

	case screenScore > 0.1 || (hasDemonstrative && hasCurrentReference):
		return QueryScreenRelated, min(0.9, 0.5+screenScore*2)

	case timeScore > 0.1 && webScore > 0.05:
		return QueryCurrentEvents, min(0.9, 0.6+timeScore+webScore)

	case technicalScore > 0.1:
		return QueryTechnicalInfo, min(0.8, 0.5+technicalScore*1.5)

	case webScore > 0.05 || timeScore > 0.05:
		return QueryWebSearchNeeded, min(0.8, 0.4+(webScore+timeScore)*2)

	case screenScore > 0.05 && webScore > 0.05:
		return QueryMixedContext, 0.7

	default:
		return QueryGeneralQuestion, 0.5
	}
}

// decide translates the query type into source flags and search parameters,
// each still subject to the optimizer gate.
func (a *ContextAnalyzer) decide(queryType QueryType, confidence float64, queryLower string,
	hasLiveOCR, shouldOCR bool, ocrReason string, shouldWeb bool, webReason string,
	screenScore, webScore, timeScore float64) ContextDecision {

	decision := ContextDecision{
		QueryType:  queryType,
		Confidence: confidence,
	}

	switch queryType {
	case QueryConversational:
		decision.Reasoning = "Conversational query - no external context needed"

	case QueryScreenRelated:
		decision.UseOCR = shouldOCR
		if shouldOCR {
			decision.Reasoning = "Screen-related query detected - using OCR to analyze current display"
		} else {
			decision.Reasoning = fmt.Sprintf("Screen-related query but OCR skipped: %s", ocrReason)
		}

	case QueryCurrentEvents:
		decision.UseWeb = shouldWeb
		if shouldWeb {
			decision.Reasoning = "Current events query - using web search for latest information"
			decision.SearchParams = a.optimizedParams(queryLower, SearchParams{TimeLimit: "d", MaxResults: 5})
		} else {
			decision.Reasoning = fmt.Sprintf("Current events query but web search skipped: %s", webReason)
		}

	case QueryTechnicalInfo:
		decision.UseWeb = shouldWeb
		if shouldWeb {
			decision.Reasoning = "Technical query - using web search for documentation and tutorials"
			decision.SearchParams = a.optimizedParams(queryLower, SearchParams{MaxResults: 3})
		} else {
			decision.Reasoning = fmt.Sprintf("Technical query but web search skipped: %s", webReason)
		}

	case QueryWebSearchNeeded:
		decision.UseWeb = shouldWeb
		if shouldWeb {
			decision.Reasoning = "Query requires external information - using web search"
			decision.SearchParams = a.optimizedParams(queryLower, SearchParams{MaxResults: 5})
		} else {
			decision.Reasoning = fmt.Sprintf("Query requires external info but web search skipped: %s", webReason)
		}

	case QueryMixedContext:
		decision.UseOCR = shouldOCR
		decision.UseWeb = shouldWeb
		switch {
		case shouldOCR && shouldWeb:
			decision.Reasoning = "Mixed context query - using both screen OCR and web search"
			decision.SearchParams = a.optimizedParams(queryLower, SearchParams{MaxResults: 3})
		case shouldOCR:
			decision.Reasoning = fmt.Sprintf("Mixed context query - using OCR only (web skipped: %s)", webReason)
		case shouldWeb:
			decision.Reasoning = fmt.Sprintf("Mixed context query - using web only (OCR skipped: %s)", ocrReason)
			decision.SearchParams = a.optimizedParams(queryLower, SearchParams{MaxResults: 5})
		default:
			decision.Reasoning = fmt.Sprintf("Mixed context query - using AI only (OCR: %s, Web: %s)", ocrReason, webReason)
		}

	default: // QueryGeneralQuestion
		switch {
		case hasLiveOCR && screenScore > 0.02 && shouldOCR:
			decision.UseOCR = true
			decision.Reasoning = "General query with live OCR available - including screen context"
		case (webScore > 0.02 || timeScore > 0.02) && shouldWeb:
			decision.UseWeb = true
			decision.Reasoning = "General query - using web search for comprehensive information"
			decision.SearchParams = a.optimizedParams(queryLower, SearchParams{MaxResults: 3})
		default:
			decision.Reasoning = "General query - using AI knowledge only"
		}
	}

	return decision
}

// applyOverrides applies the two unconditional pattern overrides, each still
// subject to its optimizer gate, and documents them in the reasoning.
func (a *ContextAnalyzer) applyOverrides(decision *ContextDecision, queryLower string, shouldOCR, shouldWeb bool) {
	if shouldOCR && (strings.Contains(queryLower, "help me with this") || strings.Contains(queryLower, "what is this")) {
		decision.UseOCR = true
		decision.Reasoning += " (Override: demonstrative reference detected)"
	}

	if shouldWeb && containsAny(queryLower, []string{"latest", "recent", "today", "news"}) {
		decision.UseWeb = true
		if decision.SearchParams == nil {
			decision.SearchParams = &SearchParams{TimeLimit: "d"}
		} else if decision.SearchParams.TimeLimit == "" {
			decision.SearchParams.TimeLimit = "d"
		}
		decision.Reasoning += " (Override: time-sensitive information needed)"
	}
}

func (a *ContextAnalyzer) optimizedParams(queryLower string, base SearchParams) *SearchParams {
	params := a.optimizer.OptimizeWebSearchParams(queryLower, base)
	return &params
}
