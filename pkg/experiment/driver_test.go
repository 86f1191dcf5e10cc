package experiment

import (
	"context"
	"testing"

	"github.com/vectorbench/vectorbench/pkg/aggregate"
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// bruteForceMethod answers every query exactly, so it always scores a
// recall of 1.0 against the gold standard — useful as a known-good
// stand-in for a concrete ANN index in driver-level tests.
type bruteForceMethod struct {
	space nnspace.Space[float32]
	data  nnobject.ObjectVector
}

func (b *bruteForceMethod) Name() string { return "bruteforce" }

func (b *bruteForceMethod) Build(space nnspace.Space[float32], data nnobject.ObjectVector) error {
	b.space = space
	b.data = data
	return nil
}

func (b *bruteForceMethod) SearchKNN(query *nnobject.Object, k int, eps float32) (nnquery.Results[float32], error) {
	items := make([]nnquery.ResultItem[float32], 0, len(b.data))
	for _, obj := range b.data {
		items = append(items, nnquery.ResultItem[float32]{ID: obj.ID(), Distance: b.space.QueryTimeDistance(obj, query)})
	}
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Distance < items[j-1].Distance; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
	if k < len(items) {
		items = items[:k]
	}
	return nnquery.Results[float32]{Items: items, DistanceComps: int64(len(b.data))}, nil
}

func (b *bruteForceMethod) SearchRange(query *nnobject.Object, radius float32) (nnquery.Results[float32], error) {
	var items []nnquery.ResultItem[float32]
	for _, obj := range b.data {
		d := b.space.QueryTimeDistance(obj, query)
		if d <= radius {
			items = append(items, nnquery.ResultItem[float32]{ID: obj.ID(), Distance: d})
		}
	}
	return nnquery.Results[float32]{Items: items, DistanceComps: int64(len(b.data))}, nil
}

func buildDriverConfig() (*Config[float32], []NamedMethod[float32], map[string]*aggregate.MetaAnalysis, map[string]*aggregate.MetaAnalysis) {
	space := nnspace.NewDenseEuclidean()
	data := nnobject.ObjectVector{
		nnobject.NewDense(0, []float32{0, 0}),
		nnobject.NewDense(1, []float32{1, 0}),
		nnobject.NewDense(2, []float32{5, 5}),
	}
	queries := nnobject.ObjectVector{
		nnobject.NewDense(100, []float32{0, 0}),
		nnobject.NewDense(101, []float32{1, 1}),
	}

	cfg := &Config[float32]{
		Space:   space,
		Data:    data,
		Queries: queries,
		Ranges:  []float32{2.0},
		KNNKs:   []int{2},
		Eps:     0,
	}

	m := &bruteForceMethod{}
	m.Build(space, data)
	indexes := []NamedMethod[float32]{{Name: "bruteforce", Method: m}}

	rangeAgg := map[string]*aggregate.MetaAnalysis{"bruteforce": aggregate.New()}
	knnAgg := map[string]*aggregate.MetaAnalysis{"bruteforce": aggregate.New()}

	return cfg, indexes, rangeAgg, knnAgg
}

func TestDriverRunAllPerfectRecall(t *testing.T) {
	cfg, indexes, rangeAgg, knnAgg := buildDriverConfig()
	d := &Driver[float32]{ThreadQty: 1}

	if err := d.RunAll(context.Background(), "test-set", rangeAgg, knnAgg, cfg, indexes); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	knnSnap := knnAgg["bruteforce"].Snapshot()
	if knnSnap.MeanRecall != 1.0 {
		t.Errorf("expected perfect knn recall from a brute-force method, got %v", knnSnap.MeanRecall)
	}
	rangeSnap := rangeAgg["bruteforce"].Snapshot()
	if rangeSnap.MeanRecall != 1.0 {
		t.Errorf("expected perfect range recall from a brute-force method, got %v", rangeSnap.MeanRecall)
	}
}

func TestDriverRunAllRespectsContextCancellation(t *testing.T) {
	cfg, indexes, rangeAgg, knnAgg := buildDriverConfig()
	d := &Driver[float32]{ThreadQty: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.RunAll(ctx, "test-set", rangeAgg, knnAgg, cfg, indexes); err == nil {
		t.Fatal("expected RunAll to report context cancellation")
	}
}

type indexSampler struct{ idxs []int }

func (s indexSampler) Sample(n int) []int { return s.idxs }

func TestDriverRunAllUsesSampler(t *testing.T) {
	cfg, indexes, rangeAgg, knnAgg := buildDriverConfig()
	d := &Driver[float32]{ThreadQty: 1, Sampler: indexSampler{idxs: []int{0}}}

	if err := d.RunAll(context.Background(), "test-set", rangeAgg, knnAgg, cfg, indexes); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	// Only one of the two queries should have been folded into the
	// aggregator once the sampler narrows the query set to a single index.
	if n := knnAgg["bruteforce"].RecallStats().N(); n != 1 {
		t.Errorf("expected 1 recall observation from the sampled query, got %d", n)
	}
	knnSnap := knnAgg["bruteforce"].Snapshot()
	if knnSnap.MeanRecall != 1.0 {
		t.Errorf("expected recall 1.0 even on the narrowed query set, got %v", knnSnap.MeanRecall)
	}
}

func TestDriverRunAllWithThreadPool(t *testing.T) {
	cfg, indexes, rangeAgg, knnAgg := buildDriverConfig()
	d := &Driver[float32]{ThreadQty: 4}

	if err := d.RunAll(context.Background(), "test-set", rangeAgg, knnAgg, cfg, indexes); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
}

func TestConfigPrintInfo(t *testing.T) {
	cfg, _, _, _ := buildDriverConfig()
	info := cfg.PrintInfo()
	if info == "" {
		t.Error("expected a non-empty summary")
	}
}
