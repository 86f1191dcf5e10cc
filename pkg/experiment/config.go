package experiment

import (
	"fmt"

	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// Config is the collaborator contract spec.md §6 calls ExperimentConfig<D>:
// the fixed input every Execute call reads from. The driver never mutates
// it; data and query objects are owned by whoever built the Config.
type Config[D nnspace.Scalar] struct {
	Space   nnspace.Space[D]
	Data    nnobject.ObjectVector
	Queries nnobject.ObjectVector
	Ranges  []D
	KNNKs   []int
	Eps     float32
}

// PrintInfo renders a one-line summary of the configuration, mirroring the
// print_info() collaborator method of spec.md §6.
func (c *Config[D]) PrintInfo() string {
	return fmt.Sprintf("data=%d queries=%d ranges=%v ks=%v eps=%v",
		len(c.Data), len(c.Queries), c.Ranges, c.KNNKs, c.Eps)
}
