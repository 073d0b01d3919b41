// Package cache implements the Dispatcher's routing-classification cache
// (§4.3: "cached by normalized question hash, TTL 10 min") as an
// in-process LRU, optionally backed by Redis when a tenant deployment runs
// more than one gateway instance.
package cache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// NormalizeQuestion produces the cache key input: lower-cased, whitespace
// collapsed, so paraphrases that differ only in case/spacing share a cache
// entry.
func NormalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func hashKey(tenantID, normalizedQuestion string) string {
	h := sha256.Sum256([]byte(tenantID + "\x00" + normalizedQuestion))
	return hex.EncodeToString(h[:])
}

type entry struct {
	key     string
	value   string
	expires time.Time
}

// LRU is a fixed-capacity, TTL-aware in-process cache. Safe for concurrent
// use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 4096
	}
	return &LRU{capacity: capacity, ttl: ttl, items: map[string]*list.Element{}, order: list.New()}
}

func (c *LRU) Get(tenantID, question string) (string, bool) {
	key := hashKey(tenantID, NormalizeQuestion(question))
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	e := el.Value.(*entry)
	if time.Now().After(e.expires) {
		c.order.Remove(el)
		delete(c.items, key)
		return "", false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

func (c *LRU) Set(tenantID, question, value string) {
	key := hashKey(tenantID, NormalizeQuestion(question))
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*entry).value = value
		el.Value.(*entry).expires = time.Now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&entry{key: key, value: value, expires: time.Now().Add(c.ttl)})
	c.items[key] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// RoutingCache fronts the in-process LRU with an optional Redis tier, so a
// fleet of gateway instances behind a load balancer shares routing
// decisions instead of each warming its own cache independently.
type RoutingCache struct {
	local *LRU
	redis *redis.Client
	ttl   time.Duration
}

func NewRoutingCache(ttl time.Duration, redisClient *redis.Client) *RoutingCache {
	return &RoutingCache{local: NewLRU(8192, ttl), redis: redisClient, ttl: ttl}
}

func (c *RoutingCache) Get(ctx context.Context, tenantID, question string) (string, bool) {
	if v, ok := c.local.Get(tenantID, question); ok {
		return v, true
	}
	if c.redis == nil {
		return "", false
	}
	key := hashKey(tenantID, NormalizeQuestion(question))
	v, err := c.redis.Get(ctx, "route:"+key).Result()
	if err != nil {
		return "", false
	}
	c.local.Set(tenantID, question, v)
	return v, true
}

func (c *RoutingCache) Set(ctx context.Context, tenantID, question, value string) {
	c.local.Set(tenantID, question, value)
	if c.redis == nil {
		return
	}
	key := hashKey(tenantID, NormalizeQuestion(question))
	c.redis.Set(ctx, "route:"+key, value, c.ttl)
}
