package bench

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/vectorbench/vectorbench/pkg/aggregate"
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

type fakeMethod struct {
	searches int64
	failOn   int64
}

func (m *fakeMethod) Name() string { return "fake" }

func (m *fakeMethod) Build(space nnspace.Space[float32], data nnobject.ObjectVector) error {
	return nil
}

func (m *fakeMethod) SearchKNN(query *nnobject.Object, k int, eps float32) (nnquery.Results[float32], error) {
	n := atomic.AddInt64(&m.searches, 1)
	if m.failOn != 0 && n == m.failOn {
		return nnquery.Results[float32]{}, errors.New("fake: forced failure")
	}
	return nnquery.Results[float32]{
		Items:         []nnquery.ResultItem[float32]{{ID: query.ID(), Distance: 0}},
		DistanceComps: 10,
	}, nil
}

func (m *fakeMethod) SearchRange(query *nnobject.Object, radius float32) (nnquery.Results[float32], error) {
	atomic.AddInt64(&m.searches, 1)
	return nnquery.Results[float32]{
		Items:         []nnquery.ResultItem[float32]{{ID: query.ID(), Distance: 0}},
		DistanceComps: 5,
	}, nil
}

func buildQueries(n int) nnobject.ObjectVector {
	qs := make(nnobject.ObjectVector, n)
	for i := range qs {
		qs[i] = nnobject.NewDense(uint64(i), []float32{float32(i)})
	}
	return qs
}

func TestWorkerRunKNN(t *testing.T) {
	m := &fakeMethod{}
	agg := aggregate.New()
	w := &Worker[float32]{Method: m, Kind: KNNKind, K: 1, Queries: buildQueries(5), Agg: agg}

	if err := w.Run(0, 1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.searches != 5 {
		t.Errorf("expected 5 searches, got %d", m.searches)
	}
	snap := agg.Snapshot()
	if snap.MeanDistComp != 10 {
		t.Errorf("expected mean dist comp 10, got %v", snap.MeanDistComp)
	}
}

func TestWorkerRunRange(t *testing.T) {
	m := &fakeMethod{}
	agg := aggregate.New()
	w := &Worker[float32]{Method: m, Kind: RangeKind, Radius: 1.0, Queries: buildQueries(3), Agg: agg}

	if err := w.Run(0, 1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.searches != 3 {
		t.Errorf("expected 3 searches, got %d", m.searches)
	}
}

func TestWorkerRunPropagatesSearchError(t *testing.T) {
	m := &fakeMethod{failOn: 2}
	agg := aggregate.New()
	w := &Worker[float32]{Method: m, Kind: KNNKind, K: 1, Queries: buildQueries(5), Agg: agg}

	if err := w.Run(0, 1); err == nil {
		t.Fatal("expected an error from the failing search")
	}
}

func TestWorkerRunUnknownKind(t *testing.T) {
	m := &fakeMethod{}
	agg := aggregate.New()
	w := &Worker[float32]{Method: m, Kind: Kind(99), Queries: buildQueries(1), Agg: agg}

	if err := w.Run(0, 1); err == nil {
		t.Fatal("expected an error for an unknown query kind")
	}
}

func TestRunAllPartitionsAcrossWorkers(t *testing.T) {
	m := &fakeMethod{}
	agg := aggregate.New()
	w := &Worker[float32]{Method: m, Kind: KNNKind, K: 1, Queries: buildQueries(20), Agg: agg}

	if err := RunAll[float32](w, 4); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if m.searches != 20 {
		t.Errorf("expected all 20 queries to be searched exactly once, got %d", m.searches)
	}
}

func TestRunAllSingleWorkerRunsInline(t *testing.T) {
	m := &fakeMethod{}
	agg := aggregate.New()
	w := &Worker[float32]{Method: m, Kind: KNNKind, K: 1, Queries: buildQueries(3), Agg: agg}

	if err := RunAll[float32](w, 1); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if m.searches != 3 {
		t.Errorf("expected 3 searches, got %d", m.searches)
	}
}
