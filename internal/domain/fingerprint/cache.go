package fingerprint

import (
	"sort"

	"github.com/reductor/reductor/internal/domain"
)

// cacheCapacity bounds the number of per-line hash arrays kept per run.
const cacheCapacity = 10000

// evictFraction is the share of least-recently-used entries dropped when the
// cache fills. Eviction happens in one pass.
const evictFraction = 0.20

type cacheEntry struct {
	hashes   *[domain.FingerprintSize]int64
	lastUsed uint64
}

// lineCache memoizes per-line position hashes. It is owned by a single
// builder and is a speed optimization only; results never depend on it.
// Not safe for concurrent use.
type lineCache struct {
	entries map[string]*cacheEntry
	clock   uint64
}

func newLineCache() *lineCache {
	return &lineCache{entries: make(map[string]*cacheEntry)}
}

// get returns the position hashes for a line key, computing and caching them
// on first use.
func (c *lineCache) get(lineKey string, seeds *[domain.FingerprintSize]seedTriple) *[domain.FingerprintSize]int64 {
	c.clock++
	if e, ok := c.entries[lineKey]; ok {
		e.lastUsed = c.clock
		return e.hashes
	}

	if len(c.entries) >= cacheCapacity {
		c.evict()
	}

	hashes := positionHashes(lineKey, seeds)
	c.entries[lineKey] = &cacheEntry{hashes: hashes, lastUsed: c.clock}
	return hashes
}

// evict drops the least-recently-used 20% of entries.
func (c *lineCache) evict() {
	type aged struct {
		key      string
		lastUsed uint64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, lastUsed: e.lastUsed})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].lastUsed < all[j].lastUsed })

	drop := int(float64(len(all)) * evictFraction)
	if drop < 1 {
		drop = 1
	}
	for _, a := range all[:drop] {
		delete(c.entries, a.key)
	}
}

func (c *lineCache) len() int { return len(c.entries) }
