package highlight

import (
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default number of cached highlight results.
const DefaultCacheSize = 256

// cacheKey identifies a highlight result. The full text is part of the key,
// so equal keys always mean identical input.
type cacheKey struct {
	language string
	text     string
}

// Cache is a bounded LRU of highlight results, safe for concurrent use.
type Cache struct {
	lru    *lru.Cache[cacheKey, []Run]
	logger *slog.Logger

	// Stats (atomic for thread-safe access without holding locks)
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	bytes     atomic.Int64
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int

	// Bytes approximates the memory held by cached texts and runs.
	Bytes int64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// NewCache creates a cache holding at most size results.
// A size of zero or less selects DefaultCacheSize.
func NewCache(size int, logger *slog.Logger) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{logger: logger}
	l, err := lru.NewWithEvict(size, c.onEvict)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	c.lru = l
	return c
}

func (c *Cache) onEvict(key cacheKey, runs []Run) {
	c.evictions.Add(1)
	c.bytes.Add(-entrySize(key, runs))
	c.logger.Debug("highlight cache eviction",
		slog.String("language", key.language),
		slog.Int("bytes", len(key.text)))
}

// Get returns the cached runs for language and text.
func (c *Cache) Get(language, text string) ([]Run, bool) {
	runs, ok := c.lru.Get(cacheKey{language: language, text: text})
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return runs, ok
}

// Add stores runs for language and text. An existing entry is kept.
func (c *Cache) Add(language, text string, runs []Run) {
	key := cacheKey{language: language, text: text}
	if ok, _ := c.lru.ContainsOrAdd(key, runs); !ok {
		c.bytes.Add(entrySize(key, runs))
	}
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry. Purged entries count as evictions.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.lru.Len(),
		Bytes:     c.bytes.Load(),
	}
}

// runOverhead approximates the fixed size of a Run value.
const runOverhead = 96

func entrySize(key cacheKey, runs []Run) int64 {
	return int64(len(key.language) + len(key.text) + len(runs)*runOverhead)
}
