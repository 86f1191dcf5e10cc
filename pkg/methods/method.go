// Package methods adapts the library's concrete ANN index implementations
// (HNSW, IVF-Flat, IVF-PQ, NSG, DiskANN, SCANN) to the uniform Method[D]
// contract the benchmark core searches against. The concrete indexes
// themselves are out of scope for this rewrite; these adapters only wire
// their existing Build/Search surface to nnspace.Space, nnobject.Object
// and nnquery's result shapes, and count the distance computations each
// search performs.
package methods

import (
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// Method is the uniform contract the experiment driver searches against,
// corresponding to spec.md §6's Index<D> collaborator contract. A Method
// owns the concrete index it wraps; Build is called once before any
// search, and the resulting index must tolerate concurrent SearchKNN /
// SearchRange calls from distinct goroutines (spec.md §5's documented
// prerequisite).
type Method[D nnspace.Scalar] interface {
	// Name identifies the method for logging and reporting.
	Name() string

	// Build constructs the index over data using space for training-time
	// distances. Called once, single-threaded, before any search.
	Build(space nnspace.Space[D], data nnobject.ObjectVector) error

	// SearchKNN returns the method's k nearest neighbors of query. eps is
	// passed through unused by the evaluator (spec.md §9).
	SearchKNN(query *nnobject.Object, k int, eps float32) (nnquery.Results[D], error)

	// SearchRange returns every object the method considers within radius
	// of query. Methods that cannot answer range queries return a
	// KindConfiguration-flavored error (spec.md §7 kind 3).
	SearchRange(query *nnobject.Object, radius D) (nnquery.Results[D], error)
}

// ConfigError reports an unsupported space/method combination, raised at
// construction rather than during evaluation (spec.md §7 kind 3).
type ConfigError struct {
	Method  string
	Message string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Method + ": " + e.Message
}

// Factory builds one Method instance; registered factories are looked up
// by name from the experiment driver's configuration.
type Factory[D nnspace.Scalar] func() Method[D]

// Registry holds named method factories for one scalar type. The source
// library warns that factory registration must never run as a package
// lazy-initializer (it risks being dropped by the linker when the
// registering file lives inside an archive that nothing else in the
// archive references) — so registration here is always an explicit call,
// never an init() func, matching that warning.
type Registry[D nnspace.Scalar] struct {
	factories map[string]Factory[D]
}

// NewRegistry returns an empty registry.
func NewRegistry[D nnspace.Scalar]() *Registry[D] {
	return &Registry[D]{factories: make(map[string]Factory[D])}
}

// Register adds a named factory. Re-registering a name overwrites it.
func (r *Registry[D]) Register(name string, f Factory[D]) {
	r.factories[name] = f
}

// Build constructs a fresh Method instance by name, or reports an unknown
// method as a configuration error.
func (r *Registry[D]) Build(name string) (Method[D], error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, &ConfigError{Method: name, Message: "no such method registered"}
	}
	return f(), nil
}

// Names lists every registered method name.
func (r *Registry[D]) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	return names
}
