package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

// CacheKind tags a cache entry's payload so each entry's type is statically
// known per kind. It also selects the entry's TTL.
type CacheKind int

const (
	CacheOCRResult CacheKind = iota
	CacheWebSearch
	CacheDecision
)

// ttlFor returns the default time-to-live for a cache kind: OCR results stay
// valid for a minute, web results for five, gating decisions for thirty
// seconds.
func ttlFor(kind CacheKind) time.Duration {
	switch kind {
	case CacheOCRResult:
		return 60 * time.Second
	case CacheWebSearch:
		return 300 * time.Second
	default:
		return 30 * time.Second
	}
}

// cacheEntry is one cached payload with access bookkeeping. text holds
// OCR/web payloads, decision holds gate decisions; only the field matching
// kind is meaningful. label preserves the original query for web entries so
// similar-query suppression can cite it.
type cacheEntry struct {
	kind         CacheKind
	text         string
	decision     bool
	label        string
	created      time.Time
	lastAccessed time.Time
	accessCount  int
	ttl          time.Duration
}

func (e *cacheEntry) expired(now time.Time) bool {
	return now.Sub(e.created) >= e.ttl
}

// ttlCache is a size-bounded TTL cache with least-recently-accessed
// eviction. An expired entry is never returned. The clock is injectable so
// expiry is testable without sleeping.
type ttlCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	maxSize int
	now     func() time.Time
}

func newTTLCache(maxSize int, now func() time.Time) *ttlCache {
	if now == nil {
		now = time.Now
	}
	return &ttlCache{
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
		now:     now,
	}
}

// get returns the entry for key if it exists, matches kind, and has not
// expired. Expired entries are dropped on the spot.
func (c *ttlCache) get(key string, kind CacheKind) (*cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.kind != kind {
		return nil, false
	}

	now := c.now()
	if entry.expired(now) {
		delete(c.entries, key)
		return nil, false
	}

	entry.accessCount++
	entry.lastAccessed = now
	return entry, true
}

// put stores an entry under key with the kind's default TTL. When the cache
// grows past 110% of maxSize, expired entries are dropped and then the least
// recently accessed entries are evicted until the size is back at maxSize.
func (c *ttlCache) put(key string, entry *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry.created = now
	entry.lastAccessed = now
	entry.ttl = ttlFor(entry.kind)
	c.entries[key] = entry

	if float64(len(c.entries)) > float64(c.maxSize)*1.1 {
		c.cleanupLocked(now)
	}
}

// cleanup drops expired entries, then evicts by last access until the cache
// is at or under its size bound.
func (c *ttlCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupLocked(c.now())
}

func (c *ttlCache) cleanupLocked(now time.Time) {
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxSize {
		return
	}

	type keyed struct {
		key          string
		lastAccessed time.Time
	}
	byAccess := make([]keyed, 0, len(c.entries))
	for key, entry := range c.entries {
		byAccess = append(byAccess, keyed{key, entry.lastAccessed})
	}
	sort.Slice(byAccess, func(i, j int) bool {
		return byAccess[i].lastAccessed.Before(byAccess[j].lastAccessed)
	})

	for _, k := range byAccess[:len(c.entries)-c.maxSize] {
		delete(c.entries, k.key)
	}
}

// webQueryLabels returns the original query strings of all unexpired
// web-search entries.
func (c *ttlCache) webQueryLabels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var labels []string
	for _, entry := range c.entries {
		if entry.kind == CacheWebSearch && !entry.expired(now) && entry.label != "" {
			labels = append(labels, entry.label)
		}
	}
	return labels
}

func (c *ttlCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ttlCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// cacheKey derives a deterministic key from its parts. The hash only has to
// be unique and stable; it is not a compatibility surface.
func cacheKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:16])
}
