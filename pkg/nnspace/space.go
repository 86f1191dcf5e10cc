// Package nnspace defines the distance-space contract that gold-standard
// search, method adapters and the experiment driver are all built against.
// A Space never owns the objects it measures; it only computes distances
// between them, optionally behaving differently depending on whether it is
// being asked to serve index construction or query answering.
package nnspace

import "github.com/vectorbench/vectorbench/pkg/nnobject"

// Phase distinguishes index-time distance computation from query-time
// distance computation. Some spaces legitimately answer the two
// differently (e.g. a space that precomputes per-object norms during
// indexing and reuses them only when the right-hand argument is the
// object being indexed). Benchmarking code must bracket any sequence of
// distance calls with the matching phase.
type Phase int

const (
	// IndexPhase is set while a method's Build is running.
	IndexPhase Phase = iota
	// QueryPhase is set while gold-standard or method search is running.
	QueryPhase
)

func (p Phase) String() string {
	if p == IndexPhase {
		return "index"
	}
	return "query"
}

// Space computes distances between objects for a fixed scalar type D. The
// left-hand argument of a distance call is conventionally the indexed (or
// data-set) object; the right-hand argument is the query object. Spaces
// that are not symmetric must honor this convention rather than relying on
// commutativity.
type Space[D Scalar] interface {
	// IndexTimeDistance measures distance between two data-set objects, or
	// between a data-set object and itself, during index construction.
	IndexTimeDistance(a, b *nnobject.Object) D

	// QueryTimeDistance measures distance between a data-set object (left)
	// and a query object (right) during search.
	QueryTimeDistance(left, right *nnobject.Object) D

	// SetIndexPhase switches the space into index-time mode. Safe to call
	// only when no search is concurrently in flight against the space.
	SetIndexPhase()

	// SetQueryPhase switches the space into query-time mode. Safe to call
	// only when no index construction is concurrently in flight.
	SetQueryPhase()

	// CurrentPhase reports the space's current phase.
	CurrentPhase() Phase
}

// RawVectorSpace is implemented by dense spaces that can hand their
// distance formula to an index expecting a plain func([]float32,
// []float32) float32 — the shape every dense method package in this
// library (hnsw, nsg, diskann) already uses for its DistanceFunc field.
// Sparse spaces do not implement this, and every adapter in pkg/methods
// rejects a space without it at Build time.
type RawVectorSpace interface {
	Raw(a, b []float32) float32
}

// phaseState is embedded by the concrete spaces below so each only has to
// provide its own distance formula.
type phaseState struct {
	phase Phase
}

func (p *phaseState) SetIndexPhase()      { p.phase = IndexPhase }
func (p *phaseState) SetQueryPhase()      { p.phase = QueryPhase }
func (p *phaseState) CurrentPhase() Phase { return p.phase }
