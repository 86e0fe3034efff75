// Package speccache caches compiled format.Spec trees by their source
// format string, since textparser.Compile walks the string once per call
// and formats are typically reused across many parses.
package speccache

import (
	"sync"
	"sync/atomic"

	"github.com/LeJamon/binform/internal/format"
	"github.com/LeJamon/binform/internal/textparser"
	lru "github.com/hashicorp/golang-lru/v2"
)

// key pairs a format string with the name prefix it was compiled under,
// since the same string compiles to different Spec trees under different
// prefixes.
type key struct {
	src    string
	prefix string
}

// Cache is an LRU of compiled Specs, safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	specs *lru.Cache[key, *format.Spec]

	hits   uint64
	misses uint64
}

// Config holds construction-time tuning for a Cache.
type Config struct {
	// MaxEntries is the number of distinct (format string, prefix) pairs
	// retained. Non-positive falls back to a default.
	MaxEntries int
}

// New builds a Cache. It only fails if golang-lru rejects the size.
func New(cfg Config) (*Cache, error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 256
	}
	inner, err := lru.New[key, *format.Spec](cfg.MaxEntries)
	if err != nil {
		return nil, err
	}
	return &Cache{specs: inner}, nil
}

// Compile returns the Spec for src compiled under prefix, from cache if
// present, or by invoking textparser.Compile and caching the result.
func (c *Cache) Compile(src, prefix string) (*format.Spec, error) {
	k := key{src: src, prefix: prefix}

	c.mu.RLock()
	spec, ok := c.specs.Get(k)
	c.mu.RUnlock()
	if ok {
		atomic.AddUint64(&c.hits, 1)
		return spec, nil
	}

	atomic.AddUint64(&c.misses, 1)
	spec, err := textparser.Compile(src, prefix)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.specs.Add(k, spec)
	c.mu.Unlock()
	return spec, nil
}

// Stats reports cumulative hit/miss counts.
type Stats struct {
	Hits   uint64
	Misses uint64
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadUint64(&c.hits),
		Misses: atomic.LoadUint64(&c.misses),
	}
}

// Len returns the number of currently cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.specs.Len()
}
