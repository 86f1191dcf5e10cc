// Package goldcache memoizes exact distance computations across repeated
// gold-standard queries against the same data set, backed by ristretto —
// replacing the teacher package's hand-rolled container/list LRU
// (pkg/search/cache.go) with the same admission-policy cache the teacher
// uses for its storage layer.
package goldcache

import (
	"github.com/dgraph-io/ristretto"

	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// Cache memoizes (dataID, queryID) -> distance pairs. It implements
// pkg/goldstandard's Cache[D] interface structurally.
type Cache[D nnspace.Scalar] struct {
	rc *ristretto.Cache
}

// New returns a Cache sized for roughly maxEntries cached distances.
// ristretto's NumCounters should be ~10x the expected entry count for
// accurate admission decisions, per its own documentation.
func New[D nnspace.Scalar](maxEntries int64) (*Cache[D], error) {
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache[D]{rc: rc}, nil
}

// Get returns the cached distance for (dataID, queryID), if present.
func (c *Cache[D]) Get(dataID, queryID uint64) (D, bool) {
	v, ok := c.rc.Get(key(dataID, queryID))
	if !ok {
		var zero D
		return zero, false
	}
	return v.(D), true
}

// Set stores dist for (dataID, queryID). Admission is left to ristretto's
// policy; a rejected Set is silently dropped, same as any ristretto cache.
func (c *Cache[D]) Set(dataID, queryID uint64, dist D) {
	c.rc.Set(key(dataID, queryID), dist, 1)
}

// Close releases ristretto's background goroutines.
func (c *Cache[D]) Close() {
	c.rc.Close()
}

// Wait blocks until every Set issued so far has been processed by
// ristretto's admission policy. Set is asynchronous; callers that need a
// deterministic read-after-write (tests, a final cache-size sample) should
// call Wait first.
func (c *Cache[D]) Wait() {
	c.rc.Wait()
}

// key combines both ids into ristretto's uint64 key space via a simple
// mixing multiply. The mix is not injective: two (dataID, queryID) pairs
// that map to the same uint64 share one cache entry, and a Get for one
// returns the distance stored for the other.
func key(dataID, queryID uint64) uint64 {
	const prime = 1099511628211
	return dataID*prime ^ queryID
}
