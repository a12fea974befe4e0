package source

import (
	"fmt"
	"os"
	"sync"

	"github.com/couchcryptid/outage-timeline-service/internal/observability"
)

// CachedLoader decodes snapshot files through an in-memory LRU cache. Entries
// are keyed by path and modification time, so a rewritten file is decoded
// again on its next load.
type CachedLoader struct {
	cache   *lruCache[Snapshot]
	metrics *observability.Metrics
}

// NewCachedLoader creates a loader holding at most maxEntries decoded snapshots.
func NewCachedLoader(maxEntries int, metrics *observability.Metrics) *CachedLoader {
	return &CachedLoader{
		cache:   newLRUCache[Snapshot](maxEntries),
		metrics: metrics,
	}
}

// Load returns the decoded snapshot at path.
func (l *CachedLoader) Load(path string) (Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("stat snapshot: %w", err)
	}
	key := fmt.Sprintf("%s|%d", path, info.ModTime().UnixNano())

	if snap, ok := l.cache.get(key); ok {
		l.metrics.SnapshotCache.WithLabelValues("hit").Inc()
		return snap, nil
	}
	l.metrics.SnapshotCache.WithLabelValues("miss").Inc()

	snap, err := LoadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	l.cache.put(key, snap)
	return snap, nil
}

// Len reports the number of cached snapshots.
func (l *CachedLoader) Len() int { return l.cache.len() }

// lruCache is a thread-safe LRU map from string keys to values.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.pushFront(e)

	for len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *lruCache[V]) pushFront(e *entry[V]) {
	e.prev, e.next = nil, c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) unlink(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictOldest() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
