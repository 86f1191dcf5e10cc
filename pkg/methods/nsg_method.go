package methods

import (
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
	"github.com/vectorbench/vectorbench/pkg/nsg"
)

// nsgMethod adapts pkg/nsg.Index to Method[float32]. NSG requires batch
// construction — every vector is queued with AddVector, then Build graphs
// them all at once — so Build here mirrors that two-step shape exactly.
// Distance-computation counting comes from Search/RangeSearch's own
// returned visited-set size rather than a counter shared across the
// method instance: concurrent Pass 1 workers call SearchKNN on the same
// *nsg.Index at once, and a shared reset()/count() pair would clobber
// itself across goroutines.
type nsgMethod struct {
	idx *nsg.Index
	ids []uint64
	l   int
}

// NewNSG returns a Method[float32] backed by the NSG graph index. l tunes
// the candidate pool size used during graph construction.
func NewNSG(l int) Method[float32] {
	return &nsgMethod{l: l}
}

func (n *nsgMethod) Name() string { return "nsg" }

func (n *nsgMethod) Build(space nnspace.Space[float32], data nnobject.ObjectVector) error {
	raw, ok := space.(nnspace.RawVectorSpace)
	if !ok {
		return &ConfigError{Method: n.Name(), Message: "space does not expose a raw dense vector distance"}
	}

	n.idx = nsg.New(nsg.IndexConfig{L: n.l, DistanceFunc: raw.Raw})

	n.ids = make([]uint64, len(data))
	for _, obj := range data {
		assigned, err := n.idx.AddVector(obj.Vector)
		if err != nil {
			return err
		}
		n.ids[assigned] = obj.ID()
	}
	return n.idx.Build()
}

func (n *nsgMethod) SearchKNN(query *nnobject.Object, k int, eps float32) (nnquery.Results[float32], error) {
	res, visited, err := n.idx.Search(query.Vector, k)
	if err != nil {
		return nnquery.Results[float32]{}, err
	}
	items := make([]nnquery.ResultItem[float32], len(res))
	for i, r := range res {
		items[i] = nnquery.ResultItem[float32]{ID: n.ids[r.ID], Distance: r.Distance}
	}
	return nnquery.Results[float32]{Items: items, DistanceComps: int64(visited)}, nil
}

func (n *nsgMethod) SearchRange(query *nnobject.Object, radius float32) (nnquery.Results[float32], error) {
	res, visited, err := n.idx.RangeSearch(query.Vector, radius)
	if err != nil {
		return nnquery.Results[float32]{}, err
	}
	items := make([]nnquery.ResultItem[float32], len(res))
	for i, r := range res {
		items[i] = nnquery.ResultItem[float32]{ID: n.ids[r.ID], Distance: r.Distance}
	}
	return nnquery.Results[float32]{Items: items, DistanceComps: int64(visited)}, nil
}
