package inventory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Fingerprint derives the cache key for a brief: a stable content hash over
// the whitespace-normalized text, so reformatted copies of the same brief
// share an identity and keys stay bounded regardless of brief length.
func Fingerprint(brief string) string {
	normalized := strings.Join(strings.Fields(brief), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}

// Cache stores combined selection results keyed by brief fingerprint.
// Get is a strict lookup and never triggers computation; Put overwrites.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (CombinedResult, bool)
	Put(ctx context.Context, fingerprint string, result CombinedResult)
}

// MemoryCache is the default backend: an unbounded in-process map, matching
// the process-lifetime policy the orchestrator assumes. Swap in the LRU or
// redis backend via configuration when growth matters.
type MemoryCache struct {
	mu      sync.RWMutex
	results map[string]CombinedResult
}

// NewMemoryCache creates an unbounded in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{results: make(map[string]CombinedResult)}
}

func (c *MemoryCache) Get(_ context.Context, fingerprint string) (CombinedResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[fingerprint]
	return r, ok
}

func (c *MemoryCache) Put(_ context.Context, fingerprint string, result CombinedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[fingerprint] = result
}

// LRUCache bounds the number of retained results
type LRUCache struct {
	inner *lru.Cache[string, CombinedResult]
}

// NewLRUCache creates a bounded cache holding at most size results
func NewLRUCache(size int) (*LRUCache, error) {
	inner, err := lru.New[string, CombinedResult](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{inner: inner}, nil
}

func (c *LRUCache) Get(_ context.Context, fingerprint string) (CombinedResult, bool) {
	return c.inner.Get(fingerprint)
}

func (c *LRUCache) Put(_ context.Context, fingerprint string, result CombinedResult) {
	c.inner.Add(fingerprint, result)
}
