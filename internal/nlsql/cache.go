package nlsql

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// identityContextKeys is the subset of the caller context that participates
// in the response-cache fingerprint. Two callers with the same question but
// different identities must never share a cached answer.
var identityContextKeys = []string{"RA", "periodo_atual"}

// Fingerprint derives the cache key for a question plus the identity subset
// of the caller context.
func Fingerprint(question string, callerContext map[string]string) string {
	h := sha256.New()
	h.Write([]byte(question))
	for _, key := range identityContextKeys {
		if v, ok := callerContext[key]; ok {
			h.Write([]byte{0})
			h.Write([]byte(key))
			h.Write([]byte{0})
			h.Write([]byte(v))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

type cacheEntry struct {
	rows     []map[string]any
	storedAt time.Time
}

// ResponseCache is a TTL map of pipeline results keyed by fingerprint.
// Only successful executions are cached; failures always retry the pipeline.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *ResponseCache) Get(key string) ([]map[string]any, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Since(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.rows, true
}

func (c *ResponseCache) Put(key string, rows []map[string]any) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{rows: rows, storedAt: time.Now()}
	c.mu.Unlock()
}
