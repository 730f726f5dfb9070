package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// genericQueryPrefixes mark questions answerable from model knowledge alone;
// OCR is skipped for them unless the query also points at the screen.
var genericQueryPrefixes = []string{
	"what is", "how to", "explain", "define", "tell me about",
	"why does", "when did", "where is", "who is",
}

// screenContextIndicators suggest the query is about what is currently
// visible, so OCR is worth the cost.
var screenContextIndicators = []string{
	"screen", "display", "window", "application", "app", "interface",
	"button", "menu", "dialog", "form", "text", "image", "visible",
	"showing", "displayed", "current", "this", "here", "that",
	"click", "select", "choose", "navigate", "scroll", "type",
}

// ocrGateIndicators is the narrower set that rescues a generic question for
// OCR use.
var ocrGateIndicators = []string{"screen", "button", "menu", "window", "this", "here", "current"}

// webNeedIndicators flag queries that clearly need external, time-sensitive
// information.
var webNeedIndicators = []string{
	"latest", "recent", "news", "current", "today", "now", "update",
	"what happened", "breaking", "announcement", "release",
	"price", "stock", "weather", "forecast", "schedule",
}

// localOnlyIndicators flag queries about the local screen that web search
// cannot help with.
var localOnlyIndicators = []string{
	"this screen", "this window", "this application", "this button",
	"here on screen", "currently visible", "what i see",
}

// Metrics tracks how much work the optimizer avoided.
type Metrics struct {
	OCRCallsSaved int64 `json:"ocr_calls_saved"`
	WebCallsSaved int64 `json:"web_calls_saved"`
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
}

// CacheStats is a point-in-time view of cache effectiveness.
type CacheStats struct {
	TotalEntries  int     `json:"total_entries"`
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	HitRate       float64 `json:"hit_rate"`
	OCRCallsSaved int64   `json:"ocr_calls_saved"`
	WebCallsSaved int64   `json:"web_calls_saved"`
}

// OptimizerConfig tunes the gating and caching behavior.
type OptimizerConfig struct {
	// OCRRateLimit and WebRateLimit are maximum calls per minute.
	OCRRateLimit int
	WebRateLimit int

	// MaxCacheSize bounds the number of cache entries; eviction is
	// least-recently-accessed.
	MaxCacheSize int

	// MinQueryLength is the minimum query length worth an external call.
	MinQueryLength int

	// SimilarQueryThreshold is the word-set Jaccard similarity at or above
	// which a query is considered already answered by a cached web search.
	SimilarQueryThreshold float64

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// DefaultOptimizerConfig returns the production defaults.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		OCRRateLimit:          10,
		WebRateLimit:          20,
		MaxCacheSize:          1000,
		MinQueryLength:        3,
		SimilarQueryThreshold: 0.8,
	}
}

// Optimizer is the gatekeeper and cache in front of OCR and web-search
// invocation. All operations are local and non-blocking; every lookup miss
// degrades to a default decision, never an error.
type Optimizer struct {
	cfg       OptimizerConfig
	cache     *ttlCache
	ocrWindow *callWindow
	webWindow *callWindow

	mu      sync.Mutex
	metrics Metrics
}

// NewOptimizer builds an Optimizer from cfg, filling zero fields with
// defaults.
func NewOptimizer(cfg OptimizerConfig) *Optimizer {
	def := DefaultOptimizerConfig()
	if cfg.OCRRateLimit <= 0 {
		cfg.OCRRateLimit = def.OCRRateLimit
	}
	if cfg.WebRateLimit <= 0 {
		cfg.WebRateLimit = def.WebRateLimit
	}
	if cfg.MaxCacheSize <= 0 {
		cfg.MaxCacheSize = def.MaxCacheSize
	}
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = def.MinQueryLength
	}
	if cfg.SimilarQueryThreshold <= 0 {
		cfg.SimilarQueryThreshold = def.SimilarQueryThreshold
	}

	return &Optimizer{
		cfg:       cfg,
		cache:     newTTLCache(cfg.MaxCacheSize, cfg.Now),
		ocrWindow: newCallWindow(cfg.OCRRateLimit, time.Minute, cfg.Now),
		webWindow: newCallWindow(cfg.WebRateLimit, time.Minute, cfg.Now),
	}
}

// ShouldUseOCR decides whether an OCR capture is worth making for query.
// force bypasses every check. The returned reason always explains the
// decision.
func (o *Optimizer) ShouldUseOCR(query, windowInfo string, force bool) (bool, string) {
	if force {
		return true, "Force check requested"
	}

	if !o.ocrWindow.allow() {
		o.mu.Lock()
		o.metrics.OCRCallsSaved++
		o.mu.Unlock()
		return false, "OCR rate limit exceeded"
	}

	if len(strings.TrimSpace(query)) < o.cfg.MinQueryLength {
		return false, "Query too short for OCR"
	}

	queryLower := strings.ToLower(query)

	if containsAny(queryLower, genericQueryPrefixes) && !containsAny(queryLower, ocrGateIndicators) {
		return false, "Generic query without screen context indicators"
	}

	key := cacheKey("ocr_decision", queryLower, windowInfo)
	if entry, ok := o.cache.get(key, CacheDecision); ok {
		o.mu.Lock()
		o.metrics.CacheHits++
		o.mu.Unlock()
		return entry.decision, "Cached decision"
	}

	shouldUse := containsAny(queryLower, screenContextIndicators)
	reason := "No screen context needed"
	if shouldUse {
		reason = "Screen context indicators found"
	}

	o.cache.put(key, &cacheEntry{kind: CacheDecision, decision: shouldUse})
	return shouldUse, reason
}

// ShouldUseWebSearch decides whether a web search is worth making for query.
func (o *Optimizer) ShouldUseWebSearch(query string, force bool) (bool, string) {
	if force {
		return true, "Force check requested"
	}

	if !o.webWindow.allow() {
		o.mu.Lock()
		o.metrics.WebCallsSaved++
		o.mu.Unlock()
		return false, "Web search rate limit exceeded"
	}

	if len(strings.TrimSpace(query)) < o.cfg.MinQueryLength {
		return false, "Query too short for web search"
	}

	queryLower := strings.ToLower(query)

	if containsAny(queryLower, webNeedIndicators) {
		return true, "Time-sensitive or external information needed"
	}

	if containsAny(queryLower, localOnlyIndicators) {
		return false, "Local screen query - no web search needed"
	}

	if similar := o.findSimilarCachedQuery(queryLower); similar != "" {
		o.mu.Lock()
		o.metrics.CacheHits++
		o.mu.Unlock()
		return false, fmt.Sprintf("Similar query recently cached: %s", clip(similar, 50))
	}

	if containsAny(queryLower, questionWords) && len(strings.Fields(query)) > 3 {
		return true, "Complex question likely needs external information"
	}

	return false, "Simple query - using AI knowledge only"
}

// CachedOCRResult returns the cached OCR text for the given window, if a
// fresh one exists.
func (o *Optimizer) CachedOCRResult(windowInfo string) (string, bool) {
	entry, ok := o.cache.get(cacheKey("ocr", windowInfo), CacheOCRResult)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !ok {
		o.metrics.CacheMisses++
		return "", false
	}
	o.metrics.CacheHits++
	o.metrics.OCRCallsSaved++
	return entry.text, true
}

// CacheOCRResult stores an OCR capture for the given window.
func (o *Optimizer) CacheOCRResult(windowInfo, text string) {
	o.cache.put(cacheKey("ocr", windowInfo), &cacheEntry{kind: CacheOCRResult, text: text})
}

// CachedWebResult returns the cached search output for (query, params), if a
// fresh one exists.
func (o *Optimizer) CachedWebResult(query string, params *SearchParams) (string, bool) {
	entry, ok := o.cache.get(cacheKey("web", query, paramsKey(params)), CacheWebSearch)

	o.mu.Lock()
	defer o.mu.Unlock()
	if !ok {
		o.metrics.CacheMisses++
		return "", false
	}
	o.metrics.CacheHits++
	o.metrics.WebCallsSaved++
	return entry.text, true
}

// CacheWebResult stores a search output for (query, params). The query text
// is retained alongside the payload so later similar queries can cite it.
func (o *Optimizer) CacheWebResult(query string, params *SearchParams, result string) {
	o.cache.put(cacheKey("web", query, paramsKey(params)), &cacheEntry{
		kind:  CacheWebSearch,
		text:  result,
		label: query,
	})
}

// OptimizeWebSearchParams clamps result counts by query length and picks a
// recency window from the query's wording.
func (o *Optimizer) OptimizeWebSearchParams(query string, base SearchParams) SearchParams {
	optimized := base

	words := len(strings.Fields(query))
	switch {
	case words <= 3:
		optimized.MaxResults = min(orDefault(base.MaxResults, 5), 3)
	case words <= 6:
		optimized.MaxResults = min(orDefault(base.MaxResults, 5), 5)
	default:
		optimized.MaxResults = min(orDefault(base.MaxResults, 10), 8)
	}

	queryLower := strings.ToLower(query)
	switch {
	case strings.Contains(queryLower, "latest") || strings.Contains(queryLower, "recent"):
		optimized.TimeLimit = "d"
	case strings.Contains(queryLower, "news"):
		optimized.TimeLimit = "w"
	default:
		optimized.TimeLimit = "m"
	}

	return optimized
}

// MetricsSnapshot returns a copy of the current metrics.
func (o *Optimizer) MetricsSnapshot() Metrics {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.metrics
}

// Stats summarizes cache effectiveness.
func (o *Optimizer) Stats() CacheStats {
	o.mu.Lock()
	m := o.metrics
	o.mu.Unlock()

	total := m.CacheHits + m.CacheMisses
	var hitRate float64
	if total > 0 {
		hitRate = float64(m.CacheHits) / float64(total)
	}

	return CacheStats{
		TotalEntries:  o.cache.len(),
		Hits:          m.CacheHits,
		Misses:        m.CacheMisses,
		HitRate:       hitRate,
		OCRCallsSaved: m.OCRCallsSaved,
		WebCallsSaved: m.WebCallsSaved,
	}
}

// CleanupCache drops expired entries and enforces the size bound.
func (o *Optimizer) CleanupCache() {
	o.cache.cleanup()
}

// ClearCache empties the cache. Metrics are preserved.
func (o *Optimizer) ClearCache() {
	o.cache.clear()
}

// findSimilarCachedQuery scans cached web queries for one whose word set has
// Jaccard similarity at or above the threshold with query.
func (o *Optimizer) findSimilarCachedQuery(queryLower string) string {
	queryWords := tokenSet(queryLower)
	if len(queryWords) == 0 {
		return ""
	}

	for _, cached := range o.cache.webQueryLabels() {
		cachedWords := tokenSet(strings.ToLower(cached))
		if len(cachedWords) == 0 {
			continue
		}

		intersection := queryWords.intersectionCount(cachedWords)
		union := len(queryWords) + len(cachedWords) - intersection
		if union > 0 && float64(intersection)/float64(union) >= o.cfg.SimilarQueryThreshold {
			return cached
		}
	}
	return ""
}

// paramsKey renders search params in a fixed field order so cache keys are
// order-independent and deterministic.
func paramsKey(params *SearchParams) string {
	if params == nil {
		return ""
	}
	return fmt.Sprintf("max_results=%d|safesearch=%s|timelimit=%s",
		params.MaxResults, params.SafeSearch, params.TimeLimit)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
