// internal/preorder/cache.go
//
// Short-TTL read cache for the public settings endpoint.
//
// Context
// -------
// Every storefront page load hits GET /api/preorder/{shop}, so the read
// path is the hot one.  The cache keeps one entry per shop (full record
// list; filters are applied after the cache), bounded by an LRU list, and
// collapses concurrent misses for the same shop through singleflight so a
// busy storefront never stampedes the database.
//
// Saves and deletes invalidate the shop's entry; everyone else waits out
// the TTL, which is why the public endpoint advertises a matching
// Cache-Control max-age.
package preorder

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/preorder/internal/metrics"
)

// ListFunc loads a shop's records from storage on cache miss.
type ListFunc func(ctx context.Context, shopDomain string) ([]Setting, error)

// Cache is a TTL + LRU cache over per-shop record lists.  Safe for
// concurrent use.
type Cache struct {
	load ListFunc
	ttl  time.Duration
	cap  int

	mu   sync.Mutex
	ll   *list.List
	dict map[string]*list.Element

	sfg singleflight.Group
}

type cacheEntry struct {
	shop    string
	records []Setting
	expires time.Time
}

// NewCache builds a Cache over load.  maxShops bounds memory; ttl == 0
// effectively disables caching (every Get reloads).
func NewCache(load ListFunc, ttl time.Duration, maxShops int) *Cache {
	if maxShops < 1 {
		maxShops = 1
	}
	return &Cache{
		load: load,
		ttl:  ttl,
		cap:  maxShops,
		ll:   list.New(),
		dict: make(map[string]*list.Element, maxShops),
	}
}

// Get returns the shop's records, loading them on miss or expiry.
func (c *Cache) Get(ctx context.Context, shopDomain string) ([]Setting, error) {
	c.mu.Lock()
	if ele, ok := c.dict[shopDomain]; ok {
		ent := ele.Value.(*cacheEntry)
		if time.Now().Before(ent.expires) {
			c.ll.MoveToFront(ele)
			c.mu.Unlock()
			metrics.ReadCacheHitTotal.Inc()
			return ent.records, nil
		}
	}
	c.mu.Unlock()

	metrics.ReadCacheMissTotal.Inc()
	v, err, _ := c.sfg.Do(shopDomain, func() (interface{}, error) {
		records, err := c.load(ctx, shopDomain)
		if err != nil {
			return nil, err
		}
		c.store(shopDomain, records)
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Setting), nil
}

// Invalidate drops a shop's entry after a write.
func (c *Cache) Invalidate(shopDomain string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.dict[shopDomain]; ok {
		c.ll.Remove(ele)
		delete(c.dict, shopDomain)
	}
}

// store inserts or refreshes an entry and evicts the LRU tail past cap.
func (c *Cache) store(shopDomain string, records []Setting) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := &cacheEntry{shop: shopDomain, records: records, expires: time.Now().Add(c.ttl)}
	if ele, ok := c.dict[shopDomain]; ok {
		ele.Value = ent
		c.ll.MoveToFront(ele)
		return
	}
	c.dict[shopDomain] = c.ll.PushFront(ent)
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(*cacheEntry).shop)
	}
}
