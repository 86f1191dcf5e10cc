// Package nnquery defines the query shapes the gold standard and every
// method adapter answer against, plus the bounded candidate queue used to
// keep a k-NN search's working set small. The queue pattern is ported from
// the HNSW package's own maxHeap, generalized over the distance scalar.
package nnquery

import (
	"container/heap"

	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// KNN asks for the k nearest neighbors of Query.
type KNN struct {
	Query *nnobject.Object
	K     int
}

// Range asks for every object within Radius of Query.
type Range[D nnspace.Scalar] struct {
	Query  *nnobject.Object
	Radius D
}

// ResultItem pairs an object id with its measured distance from the query.
type ResultItem[D nnspace.Scalar] struct {
	ID       uint64
	Distance D
}

// Results is a query's answer set. For a KNN query it is sorted closest
// first and capped at K items; for a Range query it is unsorted and
// unbounded. DistanceComps records how many distance evaluations the
// search performed to produce the answer.
type Results[D nnspace.Scalar] struct {
	Items         []ResultItem[D]
	DistanceComps int64
}

// BoundedQueue keeps the K closest items seen so far, evicting the current
// worst when a closer candidate arrives. It is the generic counterpart of
// the HNSW package's maxHeap: a max-heap on distance so the worst item is
// always at the root and can be popped in O(log n).
type BoundedQueue[D nnspace.Scalar] struct {
	cap   int
	items maxHeap[D]
}

// NewBoundedQueue creates a queue that retains at most capacity items.
func NewBoundedQueue[D nnspace.Scalar](capacity int) *BoundedQueue[D] {
	return &BoundedQueue[D]{cap: capacity}
}

// Len reports how many items the queue currently holds.
func (q *BoundedQueue[D]) Len() int { return q.items.Len() }

// Full reports whether the queue has reached its capacity.
func (q *BoundedQueue[D]) Full() bool { return q.items.Len() >= q.cap }

// Worst returns the current worst (largest-distance) item retained, or
// false if the queue is empty.
func (q *BoundedQueue[D]) Worst() (ResultItem[D], bool) {
	if q.items.Len() == 0 {
		var zero ResultItem[D]
		return zero, false
	}
	return q.items[0], true
}

// Offer considers a candidate for inclusion. It is always accepted while
// the queue has room; once full, it replaces the current worst only if
// strictly closer.
func (q *BoundedQueue[D]) Offer(item ResultItem[D]) {
	if q.cap <= 0 {
		return
	}
	if q.items.Len() < q.cap {
		heap.Push(&q.items, item)
		return
	}
	if item.Distance < q.items[0].Distance {
		heap.Pop(&q.items)
		heap.Push(&q.items, item)
	}
}

// Drain empties the queue into a slice sorted closest first.
func (q *BoundedQueue[D]) Drain() []ResultItem[D] {
	out := make([]ResultItem[D], q.items.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&q.items).(ResultItem[D])
	}
	return out
}

// maxHeap orders ResultItem by descending distance so the worst (farthest)
// candidate is always at the root, mirroring hnsw's maxHeap.
type maxHeap[D nnspace.Scalar] []ResultItem[D]

func (h maxHeap[D]) Len() int            { return len(h) }
func (h maxHeap[D]) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h maxHeap[D]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap[D]) Push(x interface{}) { *h = append(*h, x.(ResultItem[D])) }
func (h *maxHeap[D]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
