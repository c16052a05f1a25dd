// Package refresh decides whether a resource tag needs refetching.
//
// The cache remembers when each tag was last loaded successfully. Views
// are rebuilt on every navigation, so this bookkeeping lives outside them
// and survives view switches for the whole process.
package refresh

import (
	"sort"
	"sync"
	"time"
)

// DefaultTTL is how long a successful load stays fresh when no per-tag TTL
// is configured.
const DefaultTTL = 5 * time.Minute

// Cache maps resource tags to the time of their last successful fetch.
// Entries are created lazily and only dropped all at once by Reset, when
// the session ends. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]time.Time)}
}

// ShouldRefresh reports whether tag has never been fetched or was last
// fetched at least ttl before now.
func (c *Cache) ShouldRefresh(tag string, ttl time.Duration, now time.Time) bool {
	c.mu.Lock()
	last, ok := c.entries[tag]
	c.mu.Unlock()

	if !ok {
		return true
	}
	return now.Sub(last) >= ttl
}

// MarkRefreshed records a successful fetch of tag at now.
func (c *Cache) MarkRefreshed(tag string, now time.Time) {
	c.mu.Lock()
	c.entries[tag] = now
	c.mu.Unlock()
}

// LastRefreshed returns when tag was last marked, if ever.
func (c *Cache) LastRefreshed(tag string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.entries[tag]
	return t, ok
}

// Reset forgets every tag, so the next activation refetches everything.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]time.Time)
	c.mu.Unlock()
}

// Tags returns every tag that has been marked, sorted.
func (c *Cache) Tags() []string {
	c.mu.Lock()
	tags := make([]string, 0, len(c.entries))
	for tag := range c.entries {
		tags = append(tags, tag)
	}
	c.mu.Unlock()

	sort.Strings(tags)
	return tags
}

// Policy resolves the TTL to use for a tag.
type Policy struct {
	Default time.Duration
	PerTag  map[string]time.Duration
}

// TTL returns the per-tag TTL when configured, else the default, else DefaultTTL.
func (p Policy) TTL(tag string) time.Duration {
	if ttl, ok := p.PerTag[tag]; ok && ttl > 0 {
		return ttl
	}
	if p.Default > 0 {
		return p.Default
	}
	return DefaultTTL
}
