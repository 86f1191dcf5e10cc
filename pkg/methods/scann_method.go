package methods

import (
	"github.com/vectorbench/vectorbench/internal/quantization"
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
	"github.com/vectorbench/vectorbench/pkg/scann"
)

// scannMethod adapts pkg/scann.SCANN to Method[float32]. Like IVF-PQ,
// SCANN's per-candidate cost is an anisotropic-quantization distance
// lookup rather than a plain vector-pair function, so DistanceComps is
// approximated the same documented way: the number of candidates
// returned, a lower bound rather than an exact count.
type scannMethod struct {
	idx           *scann.SCANN
	nPartitions   int
	nprobe        int
	numSubvectors int
}

// NewSCANN returns a Method[float32] backed by the SCANN index.
func NewSCANN(nPartitions, nprobe int) Method[float32] {
	return &scannMethod{nPartitions: nPartitions, nprobe: nprobe, numSubvectors: 8}
}

func (m *scannMethod) Name() string { return "scann" }

func (m *scannMethod) Build(space nnspace.Space[float32], data nnobject.ObjectVector) error {
	if _, ok := space.(nnspace.RawVectorSpace); !ok {
		return &ConfigError{Method: m.Name(), Message: "space does not expose a raw dense vector distance"}
	}

	m.idx = scann.NewSCANN(&scann.Config{
		NumPartitions: m.nPartitions,
		SphericalKM:   true,
		NumSubvectors: m.numSubvectors,
		BitsPerCode:   8,
		Metric:        quantization.EuclideanDistance,
	})

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

func (m *scannMethod) SearchKNN(query *nnobject.Object, k int, eps float32) (nnquery.Results[float32], error) {
	ids, dists, err := m.idx.Search(query.Vector, k, m.nprobe)
	if err != nil {
		return nnquery.Results[float32]{}, err
	}
	items := make([]nnquery.ResultItem[float32], len(ids))
	for i := range ids {
		items[i] = nnquery.ResultItem[float32]{ID: uint64(ids[i]), Distance: dists[i]}
	}
	return nnquery.Results[float32]{Items: items, DistanceComps: int64(len(items))}, nil
}

func (m *scannMethod) SearchRange(query *nnobject.Object, radius float32) (nnquery.Results[float32], error) {
	return nnquery.Results[float32]{}, &ConfigError{Method: m.Name(), Message: "range queries are not supported by the SCANN index"}
}
