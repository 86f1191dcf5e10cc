package methods

import (
	"fmt"
	"os"

	"github.com/vectorbench/vectorbench/pkg/diskann"
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// diskannMethod adapts pkg/diskann.Index to Method[float32]. DiskANN's
// disk-resident graph needs a backing directory; Build creates one under
// os.TempDir for the lifetime of the process and never removes it, matching
// the teacher package's own "batch build, no incremental delete" model.
// Distance-computation counting comes from Search's own returned count
// (accumulated in a variable local to that call) rather than a counter
// shared across the method instance: concurrent Pass 1 workers call
// SearchKNN on the same *diskann.Index at once, and a shared reset()/
// count() pair would clobber itself across goroutines.
type diskannMethod struct {
	idx *diskann.Index
	ids []uint64
	r   int
	l   int
}

// NewDiskANN returns a Method[float32] backed by the DiskANN index. r and l
// tune graph degree and search list size as diskann.IndexConfig does.
func NewDiskANN(r, l int) Method[float32] {
	return &diskannMethod{r: r, l: l}
}

func (d *diskannMethod) Name() string { return "diskann" }

func (d *diskannMethod) Build(space nnspace.Space[float32], data nnobject.ObjectVector) error {
	raw, ok := space.(nnspace.RawVectorSpace)
	if !ok {
		return &ConfigError{Method: d.Name(), Message: "space does not expose a raw dense vector distance"}
	}

	dataPath, err := os.MkdirTemp("", "vectorbench-diskann-*")
	if err != nil {
		return fmt.Errorf("diskann: %w", err)
	}

	idx, err := diskann.New(diskann.IndexConfig{
		R:            d.r,
		L:            d.l,
		DistanceFunc: raw.Raw,
		DataPath:     dataPath,
	})
	if err != nil {
		return err
	}
	d.idx = idx

	d.ids = make([]uint64, len(data))
	for _, obj := range data {
		assigned, err := d.idx.AddVector(obj.Vector, nil)
		if err != nil {
			return err
		}
		d.ids[assigned] = obj.ID()
	}
	return d.idx.Build()
}

func (d *diskannMethod) SearchKNN(query *nnobject.Object, k int, eps float32) (nnquery.Results[float32], error) {
	res, distComps, err := d.idx.Search(query.Vector, k)
	if err != nil {
		return nnquery.Results[float32]{}, err
	}
	items := make([]nnquery.ResultItem[float32], len(res))
	for i, r := range res {
		items[i] = nnquery.ResultItem[float32]{ID: d.ids[r.ID], Distance: r.Distance}
	}
	return nnquery.Results[float32]{Items: items, DistanceComps: int64(distComps)}, nil
}

func (d *diskannMethod) SearchRange(query *nnobject.Object, radius float32) (nnquery.Results[float32], error) {
	return nnquery.Results[float32]{}, &ConfigError{Method: d.Name(), Message: "range queries are not supported by the DiskANN index"}
}
