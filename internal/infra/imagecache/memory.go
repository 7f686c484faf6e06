package imagecache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/shadowcast/internal/domain/visualize"
)

type entry struct {
	png       []byte
	expiresAt time.Time
}

// MemoryCache is an in-process image cache for tests and single-node dev runs.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache constructs a cache whose entries live for ttl (0 keeps them forever).
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements visualize.ImageCache.
func (c *MemoryCache) Get(_ context.Context, recordID string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[recordID]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, recordID)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.png...), true, nil
}

// Put implements visualize.ImageCache.
func (c *MemoryCache) Put(_ context.Context, recordID string, png []byte) error {
	e := entry{png: append([]byte(nil), png...)}
	if ttl := clampTTL(c.ttl); ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[recordID] = e
	c.mu.Unlock()
	return nil
}

var _ visualize.ImageCache = (*MemoryCache)(nil)
