package session

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
)

// resultCache keeps remote results keyed by normalized text, evicting in
// insertion order once it exceeds capacity. Callers hold the controller lock.
type resultCache struct {
	capacity int
	entries  *orderedmap.OrderedMap[string, analysis.Result]
}

func newResultCache(capacity int) *resultCache {
	return &resultCache{
		capacity: capacity,
		entries:  orderedmap.New[string, analysis.Result](),
	}
}

func (c *resultCache) get(key string) (analysis.Result, bool) {
	return c.entries.Get(key)
}

// put stores result and returns the keys evicted to stay within capacity.
// A non-positive capacity disables caching.
func (c *resultCache) put(key string, result analysis.Result) []string {
	if c.capacity <= 0 {
		return nil
	}
	c.entries.Set(key, result)

	var evicted []string
	for c.entries.Len() > c.capacity {
		oldest := c.entries.Oldest()
		if oldest == nil {
			break
		}
		evicted = append(evicted, oldest.Key)
		c.entries.Delete(oldest.Key)
	}
	return evicted
}

func (c *resultCache) len() int {
	return c.entries.Len()
}

func (c *resultCache) keys() []string {
	keys := make([]string, 0, c.entries.Len())
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
