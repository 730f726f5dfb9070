package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// appNamePattern extracts the application name from a window-info line.
var appNamePattern = regexp.MustCompile(`active window: ([^-]+)`)

// conceptAdjacency is a small fixed table of related terms used by the
// semantic sub-score. No embeddings: relevance stays purely lexical.
var conceptAdjacency = map[string][]string{
	"programming": {"code", "coding", "development", "software"},
	"python":      {"programming", "script", "language", "code"},
	"web":         {"browser", "internet", "online", "website"},
	"ai":          {"artificial", "intelligence", "machine", "learning"},
	"save":        {"file", "document", "storage", "disk"},
}

// typeWeights is the per-content-type weight table for combining sub-scores.
type typeWeights struct {
	keyword   float64
	semantic  float64
	context   float64
	freshness float64
}

// RelevanceScorer scores a piece of content against a query using keyword,
// semantic, context and freshness sub-scores weighted per content type.
//
// Scoring is pure and allocation-light; a single scorer is safe for
// concurrent use.
type RelevanceScorer struct{}

// NewRelevanceScorer returns a ready-to-use scorer.
func NewRelevanceScorer() *RelevanceScorer {
	return &RelevanceScorer{}
}

// ScoreContentRelevance computes the full relevance breakdown for content
// against query. Empty query or content yields an all-zero score with a
// sentinel explanation; it never fails.
func (s *RelevanceScorer) ScoreContentRelevance(query, content string, contentType ContentType, info *ContextInfo) RelevanceScore {
	if strings.TrimSpace(query) == "" || strings.TrimSpace(content) == "" {
		return RelevanceScore{Explanation: "Empty content or query"}
	}

	queryLower := strings.ToLower(query)
	contentLower := strings.ToLower(content)

	keyword := s.keywordRelevance(queryLower, contentLower, contentType)
	semantic := s.semanticRelevance(queryLower, contentLower)
	context := s.contextRelevance(queryLower, contentLower, contentType, info)
	freshness := freshnessFor(contentType)

	w := weightsFor(contentType)
	total := keyword*w.keyword + semantic*w.semantic + context*w.context + freshness*w.freshness

	return RelevanceScore{
		Total:       min(total, 1.0),
		Keyword:     keyword,
		Semantic:    semantic,
		Context:     context,
		Freshness:   freshness,
		Confidence:  confidence(keyword, semantic, context),
		Explanation: explain(keyword, semantic, context, freshness, contentType),
	}
}

// keywordRelevance is the ratio of query words found verbatim in the content,
// plus a flat category boost and a capped partial-match bonus.
func (s *RelevanceScorer) keywordRelevance(query, content string, contentType ContentType) float64 {
	queryWords := tokenSet(query).subtract(stopWords)
	contentWords := tokenSet(content).subtract(stopWords)

	if len(queryWords) == 0 {
		return 0.0
	}

	matchRatio := float64(queryWords.intersectionCount(contentWords)) / float64(len(queryWords))

	var categoryBoost float64
	switch contentType {
	case ContentOCRText:
		if queryWords.intersects(uiElementKeywords) ||
			queryWords.intersects(actionKeywords) ||
			queryWords.intersects(screenReferenceKeywords) {
			categoryBoost = 0.3
		}
	case ContentWebResult:
		if queryWords.intersects(informationKeywords) ||
			queryWords.intersects(timeSensitiveKeywords) {
			categoryBoost = 0.2
		}
	}

	// Substring overlap catches inflections and compound tokens
	// ("error" inside "valueerror").
	var partial float64
	for qw := range queryWords {
		if len(qw) <= 3 {
			continue
		}
		for cw := range contentWords {
			if strings.Contains(cw, qw) || strings.Contains(qw, cw) {
				partial += 0.1
			}
		}
	}
	partial = min(partial, 0.3)

	return min(matchRatio+categoryBoost+partial, 1.0)
}

// semanticRelevance approximates topical similarity with literal substring
// matches and the fixed concept-adjacency table.
func (s *RelevanceScorer) semanticRelevance(query, content string) float64 {
	var phraseScore float64
	for _, word := range strings.Fields(query) {
		word = strings.TrimSpace(word)
		if len(word) > 2 && strings.Contains(content, word) {
			phraseScore += 0.2
		}
	}
	phraseScore = min(phraseScore, 0.6)

	var conceptScore float64
	for concept, related := range conceptAdjacency {
		if !strings.Contains(query, concept) {
			continue
		}
		for _, word := range related {
			if strings.Contains(content, word) {
				conceptScore += 0.1
			}
		}
	}
	conceptScore = min(conceptScore, 0.4)

	return phraseScore + conceptScore
}

// contextRelevance boosts content that lines up with the active window and
// with content-type-specific query cues. Without context info it is 0.0.
func (s *RelevanceScorer) contextRelevance(query, content string, contentType ContentType, info *ContextInfo) float64 {
	if info == nil || info.WindowInfo == "" {
		return 0.0
	}

	var score float64

	windowInfo := strings.ToLower(info.WindowInfo)
	if m := appNamePattern.FindStringSubmatch(windowInfo); m != nil {
		appName := strings.TrimSpace(m[1])

		mentioned := strings.Contains(query, appName)
		if !mentioned {
			for _, word := range strings.Fields(appName) {
				if strings.Contains(query, word) {
					mentioned = true
					break
				}
			}
		}
		if mentioned {
			score += 0.3
		}
		if strings.Contains(content, appName) {
			score += 0.2
		}
	}

	switch contentType {
	case ContentOCRText:
		// Deictic queries point at whatever is on screen right now.
		for _, indicator := range []string{"this", "here", "current", "visible", "showing"} {
			if strings.Contains(query, indicator) {
				score += 0.4
				break
			}
		}
	case ContentWebResult:
		for _, indicator := range []string{"what", "how", "why", "latest", "news", "information"} {
			if strings.Contains(query, indicator) {
				score += 0.3
				break
			}
		}
	}

	return min(score, 1.0)
}

// freshnessFor is constant per content type: OCR text reflects the screen as
// it is right now, web results are near-current, anything else is neutral.
func freshnessFor(contentType ContentType) float64 {
	switch contentType {
	case ContentOCRText:
		return 1.0
	case ContentWebResult:
		return 0.8
	default:
		return 0.5
	}
}

func weightsFor(contentType ContentType) typeWeights {
	switch contentType {
	case ContentOCRText:
		return typeWeights{keyword: 0.4, semantic: 0.2, context: 0.3, freshness: 0.1}
	case ContentWebResult:
		return typeWeights{keyword: 0.3, semantic: 0.3, context: 0.2, freshness: 0.2}
	default:
		return typeWeights{keyword: 0.4, semantic: 0.3, context: 0.2, freshness: 0.1}
	}
}

// confidence is high when several sub-scores agree, moderate on a single
// strong signal, and floored at 0.3 otherwise.
func confidence(keyword, semantic, context float64) float64 {
	var nonTrivial []float64
	for _, v := range []float64{keyword, semantic, context} {
		if v > 0.1 {
			nonTrivial = append(nonTrivial, v)
		}
	}

	switch len(nonTrivial) {
	case 0:
		return 0.3
	case 1:
		return nonTrivial[0] * 0.7
	default:
		var sum float64
		for _, v := range nonTrivial {
			sum += v
		}
		return min(0.9, sum/float64(len(nonTrivial))+0.2)
	}
}

// explain renders the deterministic natural-language breakdown of which
// sub-scores crossed their thresholds.
func explain(keyword, semantic, context, freshness float64, contentType ContentType) string {
	var parts []string

	if keyword > 0.5 {
		parts = append(parts, "strong keyword matches")
	} else if keyword > 0.2 {
		parts = append(parts, "some keyword matches")
	}
	if semantic > 0.3 {
		parts = append(parts, "semantic relevance")
	}
	if context > 0.3 {
		parts = append(parts, "contextual relevance")
	}
	if freshness > 0.7 {
		parts = append(parts, "current information")
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Low relevance for %s", contentType)
	}
	return "Relevant due to: " + strings.Join(parts, ", ")
}
