package goldstandard

import (
	"testing"

	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

type fakeCache struct {
	entries map[[2]uint64]float32
	sets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[[2]uint64]float32)}
}

func (c *fakeCache) Get(dataID, queryID uint64) (float32, bool) {
	v, ok := c.entries[[2]uint64{dataID, queryID}]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *fakeCache) Set(dataID, queryID uint64, dist float32) {
	c.entries[[2]uint64{dataID, queryID}] = dist
	c.sets++
}

func buildData() nnobject.ObjectVector {
	return nnobject.ObjectVector{
		nnobject.NewDense(0, []float32{0, 0}),
		nnobject.NewDense(1, []float32{1, 0}),
		nnobject.NewDense(2, []float32{3, 4}),
	}
}

func TestGoldStandardSortsAscending(t *testing.T) {
	space := nnspace.NewDenseEuclidean()
	query := nnobject.NewDense(100, []float32{0, 0})

	gs := New[float32](space, buildData(), query, nil)
	dists := gs.ExactDists()
	if len(dists) != 3 {
		t.Fatalf("expected 3 exact distances, got %d", len(dists))
	}
	for i := 1; i < len(dists); i++ {
		if dists[i].Dist < dists[i-1].Dist {
			t.Errorf("expected ascending order, got %v before %v", dists[i-1].Dist, dists[i].Dist)
		}
	}
	if dists[0].Obj.ID() != 0 {
		t.Errorf("expected closest object to be id 0, got %d", dists[0].Obj.ID())
	}
}

func TestGoldStandardUsesCache(t *testing.T) {
	space := nnspace.NewDenseEuclidean()
	query := nnobject.NewDense(100, []float32{0, 0})
	cache := newFakeCache()

	New[float32](space, buildData(), query, cache)
	if cache.sets != 3 {
		t.Fatalf("expected 3 cache sets on first run, got %d", cache.sets)
	}

	New[float32](space, buildData(), query, cache)
	if cache.hits != 3 {
		t.Errorf("expected 3 cache hits on second run, got %d", cache.hits)
	}
}

func TestGoldStandardTimingIsRecorded(t *testing.T) {
	space := nnspace.NewDenseEuclidean()
	query := nnobject.NewDense(100, []float32{0, 0})
	gs := New[float32](space, buildData(), query, nil)

	if gs.SeqSearchWallTime() < 0 {
		t.Error("expected a non-negative wall time")
	}
	if gs.SeqSearchCPUTime() < 0 {
		t.Error("expected a non-negative CPU time")
	}
}
