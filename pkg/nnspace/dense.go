package nnspace

import (
	"math"

	"github.com/vectorbench/vectorbench/pkg/nnobject"
)

// DenseEuclidean is the L2 distance space over dense float32 vectors,
// ported from the HNSW package's own EuclideanDistance formula.
type DenseEuclidean struct {
	phaseState
}

// NewDenseEuclidean constructs a dense Euclidean distance space.
func NewDenseEuclidean() *DenseEuclidean {
	return &DenseEuclidean{}
}

func (s *DenseEuclidean) IndexTimeDistance(a, b *nnobject.Object) float32 {
	return euclidean(a.Vector, b.Vector)
}

func (s *DenseEuclidean) QueryTimeDistance(left, right *nnobject.Object) float32 {
	return euclidean(left.Vector, right.Vector)
}

// Raw exposes the distance formula over plain vectors, for method
// adapters that need to hand a space's formula to an index implementation
// expecting a func([]float32, []float32) float32 (e.g. hnsw.DistanceFunc).
func (s *DenseEuclidean) Raw(a, b []float32) float32 {
	return euclidean(a, b)
}

func euclidean(a, b []float32) float32 {
	if len(a) != len(b) {
		panic("nnspace: vectors must have the same dimension")
	}
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return float32(math.Sqrt(float64(sum)))
}

// DenseCosine is the 1-minus-cosine-similarity distance space over dense
// float32 vectors, ported from the HNSW package's CosineSimilarity formula.
type DenseCosine struct {
	phaseState
}

// NewDenseCosine constructs a dense cosine distance space.
func NewDenseCosine() *DenseCosine {
	return &DenseCosine{}
}

func (s *DenseCosine) IndexTimeDistance(a, b *nnobject.Object) float32 {
	return cosineDistance(a.Vector, b.Vector)
}

func (s *DenseCosine) QueryTimeDistance(left, right *nnobject.Object) float32 {
	return cosineDistance(left.Vector, right.Vector)
}

// Raw exposes the distance formula over plain vectors, see DenseEuclidean.Raw.
func (s *DenseCosine) Raw(a, b []float32) float32 {
	return cosineDistance(a, b)
}

func cosineDistance(a, b []float32) float32 {
	if len(a) != len(b) {
		panic("nnspace: vectors must have the same dimension")
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1.0
	}
	normA = float32(math.Sqrt(float64(normA)))
	normB = float32(math.Sqrt(float64(normB)))
	return 1.0 - dot/(normA*normB)
}
