package matcher

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is the number of compiled matchers kept by default
const DefaultCapacity = 20

// Cache maps pattern configurations to compiled matchers. It is safe for
// concurrent use. Entries are evicted in insertion order once the cache holds
// more than its capacity; lookups never refresh an entry.
type Cache struct {
	entries  *lru.Cache[string, Matcher]
	inflight singleflight.Group
	compiler Compiler
	capacity int
	logger   *log.Logger
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithCacheLogger sets the logger used for miss and eviction events
func WithCacheLogger(logger *log.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache creates a cache holding at most capacity matchers. A nil compiler
// selects DefaultCompiler.
func NewCache(capacity int, compiler Compiler, opts ...CacheOption) (*Cache, error) {
	if capacity <= 0 {
		return nil, errors.NewInvalidArgument("capacity", "must be positive")
	}
	if compiler == nil {
		compiler = DefaultCompiler
	}

	c := &Cache{
		compiler: compiler,
		capacity: capacity,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}

	entries, err := lru.NewWithEvict[string, Matcher](capacity, func(key string, _ Matcher) {
		c.logger.Debug("evicted compiled matcher", "key", key)
	})
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	c.entries = entries

	return c, nil
}

// GetOrCompile returns the matcher for cfg, compiling it on a miss.
// Concurrent misses for equal configurations share a single compilation.
// Compilation errors are returned and never cached.
func (c *Cache) GetOrCompile(cfg models.PatternConfig) (Matcher, error) {
	key := cfg.Key()

	if m, ok := c.entries.Peek(key); ok {
		return m, nil
	}

	v, err, _ := c.inflight.Do(key, func() (interface{}, error) {
		if m, ok := c.entries.Peek(key); ok {
			return m, nil
		}

		c.logger.Debug("compiling matcher", "config", cfg.String())
		m, err := c.compiler.Compile(cfg.Inclusions(), cfg.Exclusions(), cfg.CaseInsensitive())
		if err != nil {
			return nil, err
		}

		// PeekOrAdd keeps the first stored instance and does not touch order
		if prev, ok, _ := c.entries.PeekOrAdd(key, m); ok {
			return prev, nil
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(Matcher), nil
}

// Contains reports whether a matcher for cfg is cached
func (c *Cache) Contains(cfg models.PatternConfig) bool {
	return c.entries.Contains(cfg.Key())
}

// Len returns the number of cached matchers
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Keys returns the cached keys from oldest to newest insertion
func (c *Cache) Keys() []string {
	return c.entries.Keys()
}

// Capacity returns the maximum number of cached matchers
func (c *Cache) Capacity() int {
	return c.capacity
}

// Purge drops every cached matcher
func (c *Cache) Purge() {
	c.entries.Purge()
}
