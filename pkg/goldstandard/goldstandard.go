// Package goldstandard computes, for one query, the exhaustive sorted
// exact-distance list every method under test is measured against, plus
// the wall-clock and CPU cost of having computed it sequentially.
package goldstandard

import (
	"sort"
	"time"

	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// ExactDist pairs a data object with its exact distance to the query that
// produced a GoldStandard.
type ExactDist[D nnspace.Scalar] struct {
	Dist D
	Obj  *nnobject.Object
}

// Cache optionally memoizes exact-distance computation across repeated
// queries against the same data set. A GoldStandard consults it before
// falling back to space.IndexTimeDistance. Implementations must be safe
// for concurrent use; pkg/goldcache provides one backed by ristretto.
type Cache[D nnspace.Scalar] interface {
	Get(dataID, queryID uint64) (D, bool)
	Set(dataID, queryID uint64, dist D)
}

// GoldStandard is the exhaustive, exact answer to one query: every data
// object's distance to it, sorted ascending, plus the time the exhaustive
// scan took. It is always built with index-phase distances so it is an
// oracle independent of any method's query-phase optimizations.
type GoldStandard[D nnspace.Scalar] struct {
	exactDists  []ExactDist[D]
	seqWallTime time.Duration
	seqCPUTime  time.Duration
}

// New builds a GoldStandard for query against every object in data, using
// space in index phase. cache may be nil.
func New[D nnspace.Scalar](space nnspace.Space[D], data nnobject.ObjectVector, query *nnobject.Object, cache Cache[D]) *GoldStandard[D] {
	wallStart := time.Now()
	cpuStart := cpuTime()

	dists := make([]ExactDist[D], len(data))
	for i, obj := range data {
		var d D
		if cache != nil {
			if cached, ok := cache.Get(obj.ID(), query.ID()); ok {
				d = cached
			} else {
				d = space.IndexTimeDistance(obj, query)
				cache.Set(obj.ID(), query.ID(), d)
			}
		} else {
			d = space.IndexTimeDistance(obj, query)
		}
		dists[i] = ExactDist[D]{Dist: d, Obj: obj}
	}

	wallElapsed := time.Since(wallStart)
	cpuElapsed := cpuTime() - cpuStart

	sort.SliceStable(dists, func(i, j int) bool {
		return dists[i].Dist < dists[j].Dist
	})

	return &GoldStandard[D]{
		exactDists:  dists,
		seqWallTime: wallElapsed,
		seqCPUTime:  cpuElapsed,
	}
}

// ExactDists returns the sorted exact-distance list, ascending, stable
// for this run.
func (g *GoldStandard[D]) ExactDists() []ExactDist[D] {
	return g.exactDists
}

// SeqSearchWallTime returns how long the exhaustive scan took in wall
// clock time.
func (g *GoldStandard[D]) SeqSearchWallTime() time.Duration {
	return g.seqWallTime
}

// SeqSearchCPUTime returns how much process CPU time the exhaustive scan
// consumed.
func (g *GoldStandard[D]) SeqSearchCPUTime() time.Duration {
	return g.seqCPUTime
}
