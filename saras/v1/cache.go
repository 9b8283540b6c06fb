package v1

import (
	"sync"
	"time"
)

// TokenCache stores the service-account credential between requests. The
// in-memory implementation below is the default; deployments with multiple
// processes can plug in a shared cache behind the same interface.
type TokenCache interface {
	Get(key string) (CachedToken, bool)
	Put(key string, token CachedToken, ttl time.Duration)
	Delete(key string)
}

type CachedToken struct {
	AccessToken string
	ExpiresAt   time.Time
}

type memoryCacheEntry struct {
	token    CachedToken
	expireAt time.Time
}

type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryCacheEntry)}
}

func (c *MemoryCache) Get(key string) (CachedToken, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return CachedToken{}, false
	}
	if time.Now().After(entry.expireAt) {
		delete(c.entries, key)
		return CachedToken{}, false
	}
	return entry.token, true
}

func (c *MemoryCache) Put(key string, token CachedToken, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryCacheEntry{token: token, expireAt: time.Now().Add(ttl)}
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
