package orchestrator

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/nidhogg/teamlens/internal/layer"
)

// bundleCache memoizes assembled bundles keyed by the query hash, the
// full budget (byte cap and layer weights) and every layer's version
// counter. Any layer mutation or budget change therefore misses; stale or
// wrong-weight bundles are never served.
type bundleCache struct {
	capacity int

	mu      sync.Mutex
	bundles map[string]Bundle
	order   []string // FIFO eviction order
}

func newBundleCache(capacity int) *bundleCache {
	if capacity <= 0 {
		capacity = 128
	}
	return &bundleCache{
		capacity: capacity,
		bundles:  map[string]Bundle{},
	}
}

// key derives the cache key from query, the full budget and layer
// versions. Weights enter in sorted layer order so equal maps always hash
// identically.
func (c *bundleCache) key(query string, budget Budget, versions []uint64) string {
	h := fnv.New64a()
	h.Write([]byte(query))

	types := make([]layer.Type, 0, len(budget.PerLayerWeight))
	for t := range budget.PerLayerWeight {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		fmt.Fprintf(h, "|%s=%.4f", t, budget.PerLayerWeight[t])
	}

	return fmt.Sprintf("%x|%d|%v", h.Sum64(), budget.MaxTotalBytes, versions)
}

func (c *bundleCache) get(key string) (Bundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bundles[key]
	return b, ok
}

func (c *bundleCache) put(key string, b Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.bundles[key]; !ok {
		c.order = append(c.order, key)
	}
	c.bundles[key] = b

	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.bundles, oldest)
	}
}
