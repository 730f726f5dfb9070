package engine

import "regexp"

// wordPattern is the fixed word-boundary tokenizer shared by the scorer and
// the analyzer.
var wordPattern = regexp.MustCompile(`\w+`)

// wordSet is a set of lowercase keywords.
type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) contains(w string) bool {
	_, ok := s[w]
	return ok
}

// intersects reports whether any element of other is in s.
func (s wordSet) intersects(other wordSet) bool {
	// Iterate the smaller set.
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for w := range small {
		if big.contains(w) {
			return true
		}
	}
	return false
}

// intersectionCount returns the number of elements of s present in other.
func (s wordSet) intersectionCount(other wordSet) int {
	n := 0
	for w := range s {
		if other.contains(w) {
			n++
		}
	}
	return n
}

// tokenSet tokenizes text into a lowercase word set. Callers pass lowercased
// text; stop-word removal is the scorer's concern.
func tokenSet(text string) wordSet {
	words := wordPattern.FindAllString(text, -1)
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// subtract returns the elements of s not present in other.
func (s wordSet) subtract(other wordSet) wordSet {
	out := make(wordSet, len(s))
	for w := range s {
		if !other.contains(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

// stopWords are filtered out before keyword matching.
var stopWords = newWordSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to",
	"for", "of", "with", "by", "is", "are", "was", "were", "be",
	"been", "being", "have", "has", "had", "do", "does", "did",
	"will", "would", "could", "should", "may", "might", "can",
)

// Keyword categories used by the relevance scorer.
var (
	actionKeywords = newWordSet(
		"click", "select", "choose", "press", "tap", "touch", "drag", "drop",
		"scroll", "swipe", "type", "enter", "input", "fill", "submit",
		"navigate", "go", "open", "close", "minimize", "maximize",
	)

	uiElementKeywords = newWordSet(
		"button", "menu", "dropdown", "checkbox", "radio", "slider", "tab",
		"dialog", "popup", "modal", "form", "field", "textbox", "label",
		"icon", "image", "link", "hyperlink", "toolbar", "sidebar",
	)

	screenReferenceKeywords = newWordSet(
		"screen", "display", "monitor", "window", "application", "app",
		"interface", "gui", "ui", "visible", "showing", "displayed",
		"current", "active", "open", "running", "this", "here", "that",
	)

	informationKeywords = newWordSet(
		"what", "how", "why", "when", "where", "who", "which", "explain",
		"describe", "tell", "show", "help", "guide", "tutorial", "learn",
		"understand", "know", "find", "search", "lookup", "information",
	)

	timeSensitiveKeywords = newWordSet(
		"latest", "recent", "new", "current", "today", "now", "update",
		"breaking", "news", "announcement", "release", "fresh", "live",
	)
)

// Keyword sets used by the context analyzer's query classification.
var (
	analyzerScreenKeywords = newWordSet(
		"screen", "display", "window", "application", "app", "interface", "ui", "gui",
		"button", "menu", "dialog", "form", "text", "image", "picture", "screenshot",
		"visible", "showing", "displayed", "current", "open", "running", "active",
		"click", "select", "choose", "navigate", "scroll", "type", "enter",
	)

	analyzerWebKeywords = newWordSet(
		"latest", "recent", "current", "today", "news", "update", "new", "trending",
		"breaking", "announcement", "release", "launch", "event",
		"price", "stock", "market", "weather", "forecast", "temperature",
		"research", "investigate", "compare", "review", "tutorial", "guide",
		"recommendations", "suggestions", "alternatives", "options",
	)

	analyzerTimeIndicators = newWordSet(
		"today", "yesterday", "tomorrow", "now", "currently", "recent",
		"latest", "new", "updated", "fresh",
		"2024", "2025", "2026", "january", "february", "march", "april",
		"may", "june", "july", "august", "september", "october",
		"november", "december",
	)

	analyzerTechnicalKeywords = newWordSet(
		"programming", "code", "software", "development", "framework", "library",
		"algorithm", "database", "api", "documentation", "tutorial", "example",
		"syntax", "function", "method", "class", "variable", "error", "bug",
		"install", "setup", "configure", "deploy", "build", "compile",
	)

	analyzerConversationalKeywords = newWordSet(
		"hello", "hi", "thanks", "please", "sorry", "goodbye", "bye",
		"welcome", "pleasure", "appreciated",
	)
)

// questionWords flag interrogative queries.
var questionWords = []string{"what", "how", "where", "when", "why", "which", "who"}

// demonstrativeWords flag deictic references to something on screen.
var demonstrativeWords = []string{"this", "that", "these", "those", "here", "there"}

// currentReferenceWords flag references to the present state of the desktop.
var currentReferenceWords = []string{"current", "now", "present", "active", "open"}
