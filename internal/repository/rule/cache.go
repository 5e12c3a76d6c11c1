package rule

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domrule "github.com/kailas-cloud/queryrules/internal/domain/rule"
	"github.com/kailas-cloud/queryrules/internal/metrics"
)

// DefaultCacheTTL is how long a fetched rule set is served before refreshing.
const DefaultCacheTTL = 30 * time.Second

// source is the consumer interface the cache reads through.
type source interface {
	FetchActiveRules(ctx context.Context, limit int) ([]domrule.Rule, error)
}

// Cache serves published rules from memory and refreshes them from the
// underlying source once the TTL has passed. Concurrent refreshes collapse
// into one fetch. The returned slice is shared and must not be modified.
type Cache struct {
	src source
	ttl time.Duration
	now func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	rules     []domrule.Rule
	limit     int
	fetchedAt time.Time
	valid     bool
	gen       uint64 // bumped by Invalidate
}

// NewCache creates a rule cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache(src source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{src: src, ttl: ttl, now: time.Now}
}

// FetchActiveRules implements augment.RuleSource.
func (c *Cache) FetchActiveRules(ctx context.Context, limit int) ([]domrule.Rule, error) {
	if rules, ok := c.lookup(limit); ok {
		metrics.RuleCacheTotal.WithLabelValues("hit").Inc()
		return rules, nil
	}
	metrics.RuleCacheTotal.WithLabelValues("miss").Inc()

	// The refresh is shared by every waiter, so it must not die with the
	// first caller's request. A fetch started before Invalidate is neither
	// joined by later callers nor stored.
	gen := c.generation()
	key := strconv.FormatUint(gen, 10) + "/" + strconv.Itoa(limit)
	fetchCtx := context.WithoutCancel(ctx)

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have refreshed while we waited.
		if rules, ok := c.lookup(limit); ok {
			return rules, nil
		}
		rules, err := c.src.FetchActiveRules(fetchCtx, limit)
		if err != nil {
			return nil, err
		}
		c.store(rules, limit, gen)
		return rules, nil
	})
	if err != nil {
		return nil, fmt.Errorf("refresh rules: %w", err)
	}
	return v.([]domrule.Rule), nil
}

// Invalidate drops the cached rules so the next fetch reads the source.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.rules = nil
	c.gen++
	c.mu.Unlock()
}

func (c *Cache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *Cache) lookup(limit int) ([]domrule.Rule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid || c.limit != limit || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.rules, true
}

func (c *Cache) store(rules []domrule.Rule, limit int, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.rules = rules
	c.limit = limit
	c.fetchedAt = c.now()
	c.valid = true
}
