// Package nnobject defines the opaque identified payload the benchmark core
// operates on. Objects are borrowed, never owned, by the evaluation and
// gold-standard code — only the stable id is consumed by those packages.
package nnobject

// Object is a single data point or query point. The core only ever reads
// ID(); the vector/sparse payload exists for Space implementations to
// compute distances from.
type Object struct {
	id uint64

	// Vector holds a dense embedding. Nil for sparse objects.
	Vector []float32

	// Sparse holds a sparse embedding keyed by dimension index. Nil for
	// dense objects.
	Sparse map[uint32]float32
}

// NewDense creates an Object backed by a dense vector.
func NewDense(id uint64, vector []float32) *Object {
	return &Object{id: id, Vector: vector}
}

// NewSparse creates an Object backed by a sparse vector.
func NewSparse(id uint64, sparse map[uint32]float32) *Object {
	return &Object{id: id, Sparse: sparse}
}

// ID returns the object's stable identifier.
func (o *Object) ID() uint64 {
	return o.id
}

// ObjectVector is an ordered collection of data objects, e.g. a dataset or
// a query set. Index position has no semantic meaning beyond iteration
// order; ids are what the evaluator tracks.
type ObjectVector []*Object
