package drivecache

import (
	"sync"

	"go.uber.org/zap"

	"github.com/studyshelf/studyshelf/internal/logging"
	"github.com/studyshelf/studyshelf/internal/metrics"
)

// ContentCache holds exported document HTML keyed by file ID, bounded by
// a byte budget. Eviction is FIFO by insertion order: exported documents
// are re-read rarely, so recency tracking is not worth the bookkeeping.
type ContentCache struct {
	maxSize int64

	mu      sync.RWMutex
	entries map[string]string
	order   []string // insertion order, oldest first
	size    int64
}

// NewContentCache creates a content cache with the given byte budget.
func NewContentCache(maxSize int64) *ContentCache {
	return &ContentCache{
		maxSize: maxSize,
		entries: make(map[string]string),
	}
}

// Get returns the cached content for a file ID.
func (c *ContentCache) Get(fileID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	content, ok := c.entries[fileID]
	if ok {
		metrics.RecordContentCacheHit()
	} else {
		metrics.RecordContentCacheMiss()
	}
	return content, ok
}

// Put stores exported content, evicting oldest-inserted entries until the
// budget holds. A single entry larger than the budget empties the cache
// and is still inserted; the budget bounds the steady state, it is not a
// per-item cap.
func (c *ContentCache) Put(fileID, content string) {
	newSize := int64(len(content))

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[fileID]; ok {
		c.removeLocked(fileID, old)
	}

	for c.size+newSize > c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.removeLocked(oldest, c.entries[oldest])
		metrics.RecordContentCacheEviction()
		logging.Debug("evicted document from content cache", zap.String("file_id", oldest))
	}

	c.entries[fileID] = content
	c.order = append(c.order, fileID)
	c.size += newSize
	metrics.SetContentCacheSize(c.size, len(c.entries))
}

// Clear drops every entry and resets the size counter.
func (c *ContentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]string)
	c.order = nil
	c.size = 0
	metrics.SetContentCacheSize(0, 0)
}

// Stats returns the current byte size, budget, and entry count.
func (c *ContentCache) Stats() (size, maxSize int64, count int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size, c.maxSize, len(c.entries)
}

// removeLocked drops one entry. Must be called with the lock held.
func (c *ContentCache) removeLocked(fileID, content string) {
	delete(c.entries, fileID)
	c.size -= int64(len(content))
	for i, id := range c.order {
		if id == fileID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
