package evalresults

import (
	"testing"

	"github.com/vectorbench/vectorbench/pkg/goldstandard"
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

func buildGoldStandard(t *testing.T) *goldstandard.GoldStandard[float32] {
	t.Helper()
	space := nnspace.NewDenseEuclidean()
	data := nnobject.ObjectVector{
		nnobject.NewDense(0, []float32{0, 0}),
		nnobject.NewDense(1, []float32{1, 0}),
		nnobject.NewDense(2, []float32{5, 0}),
	}
	query := nnobject.NewDense(100, []float32{0, 0})
	return goldstandard.New[float32](space, data, query, nil)
}

func TestNewKNNPerfectRecall(t *testing.T) {
	gs := buildGoldStandard(t)
	approx := nnquery.Results[float32]{Items: []nnquery.ResultItem[float32]{
		{ID: 0, Distance: 0},
		{ID: 1, Distance: 1},
	}}

	e, err := NewKNN[float32](gs, approx, 2)
	if err != nil {
		t.Fatalf("NewKNN: %v", err)
	}
	m := e.Metrics()
	if m.Recall != 1.0 {
		t.Errorf("expected recall 1.0, got %v", m.Recall)
	}
	if m.NumberCloser != 0 {
		t.Errorf("expected 0 exact neighbors closer than the nearest approx, got %d", m.NumberCloser)
	}
}

func TestNewKNNPartialRecall(t *testing.T) {
	gs := buildGoldStandard(t)
	// Only returns the second-closest of the true top 2.
	approx := nnquery.Results[float32]{Items: []nnquery.ResultItem[float32]{
		{ID: 1, Distance: 1},
	}}

	e, err := NewKNN[float32](gs, approx, 2)
	if err != nil {
		t.Fatalf("NewKNN: %v", err)
	}
	m := e.Metrics()
	if m.Recall != 0.5 {
		t.Errorf("expected recall 0.5, got %v", m.Recall)
	}
}

func TestNewKNNEmptyApprox(t *testing.T) {
	gs := buildGoldStandard(t)
	approx := nnquery.Results[float32]{}

	e, err := NewKNN[float32](gs, approx, 2)
	if err != nil {
		t.Fatalf("NewKNN: %v", err)
	}
	m := e.Metrics()
	if m.Recall != 0 {
		t.Errorf("expected recall 0 for an empty approx set, got %v", m.Recall)
	}
	if m.NumberCloser != 2 {
		t.Errorf("expected number closer to equal k=2, got %d", m.NumberCloser)
	}
}

func TestNewKNNRejectsDistanceCloserThanExact(t *testing.T) {
	gs := buildGoldStandard(t)
	// Claims a distance below the true nearest neighbor's distance (0).
	approx := nnquery.Results[float32]{Items: []nnquery.ResultItem[float32]{
		{ID: 99, Distance: -1},
	}}

	if _, err := NewKNN[float32](gs, approx, 1); err == nil {
		t.Fatal("expected an error when the approximate result beats the exact gold standard")
	}
}

func TestNewRangeMatchesRadius(t *testing.T) {
	gs := buildGoldStandard(t)
	approx := nnquery.Results[float32]{Items: []nnquery.ResultItem[float32]{
		{ID: 0, Distance: 0},
		{ID: 1, Distance: 1},
	}}

	e, err := NewRange[float32](gs, approx, 2)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	if e.Metrics().Recall != 1.0 {
		t.Errorf("expected recall 1.0 within radius 2, got %v", e.Metrics().Recall)
	}
}

func TestNewRangeRejectsDuplicateIDs(t *testing.T) {
	gs := buildGoldStandard(t)
	approx := nnquery.Results[float32]{Items: []nnquery.ResultItem[float32]{
		{ID: 0, Distance: 0},
		{ID: 0, Distance: 0},
	}}

	if _, err := NewRange[float32](gs, approx, 2); err == nil {
		t.Fatal("expected an error for duplicate object ids in a range result")
	}
}
