// Package fallbackcache implements the engine's bounded LRU+TTL cache used
// to serve stale responses while the remote service is unavailable.
package fallbackcache

import (
	"container/list"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/berkeerdo/grpc-resilient/internal/types"
)

const (
	minMaxSize  = 1
	maxMaxSize  = 100000
	minTTL      = 10 * time.Millisecond
	maxTTL      = 86_400_000 * time.Millisecond
)

// Logger is the subset of types.Logger the cache needs (debug logging on
// stale reads, per spec §4.B).
type Logger interface {
	Debug(msg string, args ...any)
}

type entry struct {
	key             string
	value           []byte
	insertTimestamp time.Time
	ttl             time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.insertTimestamp) > e.ttl
}

// Cache is a bounded LRU with per-entry TTL and stale-while-unavailable
// reads: a get() past TTL returns the value rather than treating it as a
// miss, and does not evict it. Apart from the least-recently-used entry that
// Set evicts when the cache is over capacity, only explicit
// delete/clear/cleanup remove entries.
type Cache struct {
	mu          sync.Mutex
	serviceName string
	logger      Logger
	maxSize     int
	defaultTTL  time.Duration

	ll    *list.List               // front = most recently used
	items map[string]*list.Element // value is *entry
}

// New constructs a Cache. serviceName must be non-empty after trimming,
// logger must be non-nil, maxSize must be in [1, 100000], and defaultTTL
// must be in [10ms, 86400000ms].
func New(serviceName string, logger Logger, maxSize int, defaultTTL time.Duration) (*Cache, error) {
	if strings.TrimSpace(serviceName) == "" {
		return nil, fmt.Errorf("fallbackcache: serviceName must not be empty")
	}
	if logger == nil {
		return nil, fmt.Errorf("fallbackcache: logger must not be nil")
	}
	if maxSize < minMaxSize || maxSize > maxMaxSize {
		return nil, fmt.Errorf("fallbackcache: maxSize %d out of bounds [%d, %d]", maxSize, minMaxSize, maxMaxSize)
	}
	if defaultTTL < minTTL || defaultTTL > maxTTL {
		return nil, fmt.Errorf("fallbackcache: defaultTtl %s out of bounds [%s, %s]", defaultTTL, minTTL, maxTTL)
	}

	return &Cache{
		serviceName: serviceName,
		logger:      logger,
		maxSize:     maxSize,
		defaultTTL:  defaultTTL,
		ll:          list.New(),
		items:       make(map[string]*list.Element),
	}, nil
}

// Set inserts or refreshes a key. A ttl of 0 uses the cache's default TTL.
// If inserting would exceed maxSize, the least-recently-used entry is
// evicted first.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) error {
	if err := types.ValidateKey(key); err != nil {
		return err
	}
	if ttl < 0 {
		return fmt.Errorf("fallbackcache: negative ttl %s", ttl)
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.insertTimestamp = now
		e.ttl = ttl
		c.ll.MoveToFront(el)
		return nil
	}

	el := c.ll.PushFront(&entry{key: key, value: value, insertTimestamp: now, ttl: ttl})
	c.items[key] = el

	if c.ll.Len() > c.maxSize {
		c.evictOldest()
	}
	return nil
}

// Get returns the value for key. A present-but-expired entry is still
// returned (stale-allowed) and logged at debug level; it is not evicted.
// Accessing an entry refreshes its LRU recency.
func (c *Cache) Get(key string) ([]byte, bool) {
	if err := types.ValidateKey(key); err != nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}

	e := el.Value.(*entry)
	c.ll.MoveToFront(el)

	if e.expired(time.Now()) {
		c.logger.Debug("fallback cache serving stale entry", "key", key, "service", c.serviceName)
	}

	return e.value, true
}

// Has reports presence regardless of expiry.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Delete removes key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.ll.Remove(el)
	delete(c.items, key)
	return true
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// Cleanup purges entries strictly past their TTL and returns the count
// removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var removed int
	var next *list.Element
	for el := c.ll.Back(); el != nil; el = next {
		next = el.Prev()
		e := el.Value.(*entry)
		if e.expired(now) {
			c.ll.Remove(el)
			delete(c.items, e.key)
			removed++
		}
	}
	return removed
}

// Len returns the current number of entries (expired or not).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// evictOldest removes the least-recently-used entry. Caller must hold mu.
func (c *Cache) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	e := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.items, e.key)
}
