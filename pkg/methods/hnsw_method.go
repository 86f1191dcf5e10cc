package methods

import (
	"github.com/vectorbench/vectorbench/pkg/hnsw"
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// hnswMethod adapts pkg/hnsw.Index to Method[float32]. It plays the role
// the original library assigns to a bb-tree-family index: a graph
// structure built once over the full data set, then searched repeatedly.
// Distance-computation counting uses hnsw.SearchResult.Visited, a count
// local to each Search call, rather than a shared counter wrapped around
// the index's DistanceFunc: concurrent Pass 1 workers call SearchKNN on the
// same *hnsw.Index simultaneously, and a counter shared across those calls
// would have its reset() from one goroutine clobber another's in-flight
// count.
type hnswMethod struct {
	idx            *hnsw.Index
	ids            []uint64 // hnsw-assigned sequential id -> nnobject id
	m              int
	efConstruction int
	efSearch       int
}

// NewHNSW returns a Method[float32] backed by the HNSW graph index. m sets
// hnsw.IndexConfig.M; efSearch tunes query-time recall/speed. Build does
// not apply efConstruction (see the note in Build): the graph is always
// built with the hnsw package's default construction list size.
func NewHNSW(m, efConstruction, efSearch int) Method[float32] {
	return &hnswMethod{m: m, efConstruction: efConstruction, efSearch: efSearch}
}

func (h *hnswMethod) Name() string { return "hnsw" }

func (h *hnswMethod) Build(space nnspace.Space[float32], data nnobject.ObjectVector) error {
	raw, ok := space.(nnspace.RawVectorSpace)
	if !ok {
		return &ConfigError{Method: h.Name(), Message: "space does not expose a raw dense vector distance"}
	}

	// efConstruction is unexported on hnsw.IndexConfig, so construction
	// quality is left at the package default; only M and the distance
	// function are overridable from outside the package.
	cfg := hnsw.DefaultConfig()
	cfg.M = h.m
	cfg.DistanceFunc = raw.Raw
	h.idx = hnsw.New(cfg)

	h.ids = make([]uint64, len(data))
	for _, obj := range data {
		assigned, err := h.idx.Insert(obj.Vector)
		if err != nil {
			return err
		}
		h.ids[assigned] = obj.ID()
	}
	return nil
}

func (h *hnswMethod) SearchKNN(query *nnobject.Object, k int, eps float32) (nnquery.Results[float32], error) {
	ef := h.efSearch
	if ef < k {
		ef = k * 2
	}
	res, err := h.idx.Search(query.Vector, k, ef)
	if err != nil {
		return nnquery.Results[float32]{}, err
	}
	items := make([]nnquery.ResultItem[float32], len(res.Results))
	for i, r := range res.Results {
		items[i] = nnquery.ResultItem[float32]{ID: h.ids[r.ID], Distance: r.Distance}
	}
	return nnquery.Results[float32]{Items: items, DistanceComps: int64(res.Visited)}, nil
}

func (h *hnswMethod) SearchRange(query *nnobject.Object, radius float32) (nnquery.Results[float32], error) {
	return nnquery.Results[float32]{}, &ConfigError{Method: h.Name(), Message: "range queries are not supported by the HNSW graph index"}
}
