package methods

import (
	"github.com/vectorbench/vectorbench/internal/quantization"
	"github.com/vectorbench/vectorbench/pkg/ivf"
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// ivfMethod adapts pkg/ivf.IVFFlat to Method[float32], playing the role
// the original library assigns to a multi-vantage-point-tree index: a
// partitioned structure trained once over the full data set, then probed
// per query. Distance-computation counting uses the CustomDistance hook
// added to IVFFlat for this purpose (see DESIGN.md) rather than the
// package's own metric dispatch, so the count reflects every distance
// call Search actually makes regardless of which quantization.DistanceMetric
// the space corresponds to. Search itself returns that count, tallied in a
// variable local to the one call, so concurrent Pass 1 workers probing the
// same index never clobber each other's count.
type ivfMethod struct {
	idx        *ivf.IVFFlat
	dist       func(a, b []float32) float32
	nCentroids int
	nprobe     int
}

// NewIVFFlat returns a Method[float32] backed by the IVF-Flat index.
// nCentroids and nprobe tune partition count and query-time fan-out.
func NewIVFFlat(nCentroids, nprobe int) Method[float32] {
	return &ivfMethod{nCentroids: nCentroids, nprobe: nprobe}
}

func (m *ivfMethod) Name() string { return "ivf-flat" }

func (m *ivfMethod) Build(space nnspace.Space[float32], data nnobject.ObjectVector) error {
	raw, ok := space.(nnspace.RawVectorSpace)
	if !ok {
		return &ConfigError{Method: m.Name(), Message: "space does not expose a raw dense vector distance"}
	}

	m.dist = raw.Raw
	m.idx = ivf.NewIVFFlat(ivf.Config{
		NumCentroids: m.nCentroids,
		Metric:       quantization.EuclideanDistance,
	})
	m.idx.CustomDistance = m.dist

	vectors := make([][]float32, len(data))
	ids := make([]int, len(data))
	for i, obj := range data {
		vectors[i] = obj.Vector
		ids[i] = int(obj.ID())
	}

	if err := m.idx.Train(vectors); err != nil {
		return err
	}
	return m.idx.Add(vectors, ids, nil)
}

func (m *ivfMethod) SearchKNN(query *nnobject.Object, k int, eps float32) (nnquery.Results[float32], error) {
	ids, dists, distComps, err := m.idx.Search(query.Vector, k, m.nprobe)
	if err != nil {
		return nnquery.Results[float32]{}, err
	}
	items := make([]nnquery.ResultItem[float32], len(ids))
	for i := range ids {
		items[i] = nnquery.ResultItem[float32]{ID: uint64(ids[i]), Distance: dists[i]}
	}
	return nnquery.Results[float32]{Items: items, DistanceComps: int64(distComps)}, nil
}

func (m *ivfMethod) SearchRange(query *nnobject.Object, radius float32) (nnquery.Results[float32], error) {
	return nnquery.Results[float32]{}, &ConfigError{Method: m.Name(), Message: "range queries are not supported by the IVF-Flat index"}
}
