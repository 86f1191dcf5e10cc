// Package bench implements the Pass 1 efficiency worker: a callable that
// partitions a query set across W goroutines by index modulo, timing each
// method.search call and folding the results into a shared aggregator.
package bench

import (
	"fmt"
	"sync"
	"time"

	"github.com/vectorbench/vectorbench/pkg/aggregate"
	"github.com/vectorbench/vectorbench/pkg/methods"
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// Kind selects which query shape a Worker issues. A single Worker run is
// always one kind: one fixed radius, or one fixed k, across every query in
// the set — spec.md's Execute iterates configurations one at a time.
type Kind int

const (
	KNNKind Kind = iota
	RangeKind
)

// Worker runs Pass 1 of one (method, configuration) combination: for each
// query assigned to it, build a fresh search, time it, and record the
// outcome in agg. Queries are never shared across workers or reused across
// methods (spec.md §5's "each query is constructed and owned by the single
// worker that uses it").
type Worker[D nnspace.Scalar] struct {
	Method  methods.Method[D]
	Kind    Kind
	K       int
	Eps     float32
	Radius  D
	Queries nnobject.ObjectVector
	Agg     *aggregate.MetaAnalysis
}

// Run executes this worker's share of Queries: indices q where
// q mod total == index. Returns the first search error encountered, if
// any method search fails outright (as opposed to returning an empty
// result, which is not an error — see spec.md §4.2.5).
func (w *Worker[D]) Run(index, total int) error {
	for q := index; q < len(w.Queries); q += total {
		query := w.Queries[q]

		t1 := time.Now()
		var distComps int64
		var resultSize int
		var err error

		switch w.Kind {
		case KNNKind:
			r, e := w.Method.SearchKNN(query, w.K, w.Eps)
			err = e
			distComps = r.DistanceComps
			resultSize = len(r.Items)
		case RangeKind:
			r, e := w.Method.SearchRange(query, w.Radius)
			err = e
			distComps = r.DistanceComps
			resultSize = len(r.Items)
		default:
			return fmt.Errorf("bench: unknown query kind %d", w.Kind)
		}
		t2 := time.Now()

		if err != nil {
			return fmt.Errorf("bench: query %d: %w", q, err)
		}

		w.Agg.AddQueryTime(t2.Sub(t1))
		w.Agg.AddDistComp(distComps, resultSize)
	}
	return nil
}

// RunAll spawns `workers` goroutines (or runs inline when workers == 1,
// per spec.md §4.4) each executing a copy of w scoped to its share of
// Queries, and joins before returning. It returns the first error any
// worker encountered.
func RunAll[D nnspace.Scalar](w *Worker[D], workers int) error {
	if workers <= 1 {
		return w.Run(0, 1)
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(idx int) {
			defer wg.Done()
			errs[idx] = w.Run(idx, workers)
		}(i)
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
