package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache stores validated document bodies by content key. Metadata is not
// cached; a hit is rebuilt from the unit being generated.
type Cache interface {
	Get(key string) (string, bool)
	Put(key, body string)
}

// MemoryCache is a process-lifetime Cache. Entries are never evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	body, ok := c.entries[key]
	return body, ok
}

func (c *MemoryCache) Put(key, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = body
}

// Len returns the number of cached bodies.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CacheKey hashes the unit id with the first prefix bytes of its content.
func CacheKey(unitID, content string, prefix int) string {
	if prefix > 0 && len(content) > prefix {
		content = content[:prefix]
	}
	sum := sha256.Sum256([]byte(unitID + "\x00" + content))
	return hex.EncodeToString(sum[:])
}
