package parser

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// defaultMaxEntries bounds the global template cache so that an
// application building templates dynamically (e.g. from user input)
// cannot exhaust memory through unbounded cache growth.
const defaultMaxEntries = 4096

// Stats reports global template cache activity.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// cache is an LRU-evicting template cache keyed by the raw template
// string. A doubly-linked list tracks recency, a map gives O(1) lookup,
// and a single mutex guards both.
type cache struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List
	items      map[string]*list.Element

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	key   string
	value *MessageTemplate
}

func newCache(maxEntries int) *cache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &cache{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}
}

func (c *cache) Get(key string) (*MessageTemplate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		c.hits.Add(1)
		return el.Value.(*cacheEntry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

func (c *cache) Put(key string, value *MessageTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*cacheEntry).value = value
		return
	}

	el := c.ll.PushFront(&cacheEntry{key: key, value: value})
	c.items[key] = el

	for c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
		c.evictions.Add(1)
	}
}

func (c *cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

func (c *cache) Stats() Stats {
	c.mu.Lock()
	size := c.ll.Len()
	c.mu.Unlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      size,
	}
}

var globalCache atomic.Pointer[cache]

func init() {
	globalCache.Store(newCache(defaultMaxEntries))
}

// CacheOption configures the global template cache.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	maxEntries int
}

// WithMaxEntries bounds the number of distinct templates the global
// cache retains before evicting least-recently-used entries.
func WithMaxEntries(n int) CacheOption {
	return func(c *cacheConfig) { c.maxEntries = n }
}

// ConfigureCache replaces the global template cache. Call this once at
// startup, before logging begins; it is not safe to call concurrently
// with ParseCached.
func ConfigureCache(opts ...CacheOption) {
	cfg := cacheConfig{maxEntries: defaultMaxEntries}
	for _, opt := range opts {
		opt(&cfg)
	}
	globalCache.Store(newCache(cfg.maxEntries))
}

// ParseCached parses a template, memoizing the result in the bounded
// global cache so repeated calls with the same template string (the
// overwhelmingly common case — call sites use string literals) avoid
// re-parsing on the hot path.
func ParseCached(template string) *MessageTemplate {
	c := globalCache.Load()
	if tmpl, ok := c.Get(template); ok {
		return tmpl
	}
	tmpl := Parse(template)
	c.Put(template, tmpl)
	return tmpl
}

// ClearCache empties the global template cache. Useful in tests.
func ClearCache() {
	globalCache.Load().Clear()
}

// CacheStats returns global template cache statistics.
func CacheStats() Stats {
	return globalCache.Load().Stats()
}
