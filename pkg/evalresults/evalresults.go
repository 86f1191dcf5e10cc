// Package evalresults computes, for one (query, method) pair, the
// effectiveness metrics the benchmark core reports: recall, number-closer,
// log relative-position error and precision-of-approximation, validating
// along the way that the method never claims to be closer to the query
// than the gold standard permits.
package evalresults

import (
	"math"

	"github.com/vectorbench/vectorbench/pkg/goldstandard"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// Metrics is the effectiveness result of comparing one method's answer
// against the gold standard for one query.
type Metrics struct {
	Recall            float64
	NumberCloser      int
	LogRelPosError    float64
	PrecisionOfApprox float64
}

// EvalResults holds the exact and approximate result sets extracted for one
// query, plus the computed effectiveness Metrics.
type EvalResults[D nnspace.Scalar] struct {
	exactResultSet  map[uint64]struct{}
	approxResultSet map[uint64]struct{}
	approxDistances []D
	metrics         Metrics
}

// Metrics returns the computed effectiveness metrics.
func (e *EvalResults[D]) Metrics() Metrics {
	return e.metrics
}

// NewKNN builds an EvalResults for a k-NN query. k is the requested K;
// approx is the method's drained result queue, expected ascending by
// distance (see pkg/nnquery.BoundedQueue.Drain).
func NewKNN[D nnspace.Scalar](gold *goldstandard.GoldStandard[D], approx nnquery.Results[D], k int) (*EvalResults[D], error) {
	exactDists := gold.ExactDists()

	exactSet := extractKNNExactSet(exactDists, k)
	approxSet, approxDists := extractKNNApprox(approx.Items)

	e := &EvalResults[D]{
		exactResultSet:  exactSet,
		approxResultSet: approxSet,
		approxDistances: approxDists,
	}

	metrics, err := computeMetrics(exactDists, exactSet, approxSet, approxDists, k)
	if err != nil {
		return nil, err
	}
	e.metrics = metrics
	return e, nil
}

// NewRange builds an EvalResults for a range query with the given radius.
// approx.Items need not be pre-sorted; duplicate ids are a precondition
// violation, not silently ignored, matching spec.md §4.2.2's range path.
func NewRange[D nnspace.Scalar](gold *goldstandard.GoldStandard[D], approx nnquery.Results[D], radius D) (*EvalResults[D], error) {
	exactDists := gold.ExactDists()

	exactSet := extractRangeExactSet(exactDists, radius)
	approxSet, approxDists, err := extractRangeApprox(approx.Items)
	if err != nil {
		return nil, err
	}

	e := &EvalResults[D]{
		exactResultSet:  exactSet,
		approxResultSet: approxSet,
		approxDistances: approxDists,
	}

	// Range queries normalize against |exact_result_set|, signalled to
	// computeMetrics by passing k < 0.
	metrics, err := computeMetrics(exactDists, exactSet, approxSet, approxDists, -1)
	if err != nil {
		return nil, err
	}
	e.metrics = metrics
	return e, nil
}

// extractKNNExactSet implements spec.md §4.2.1's k-NN rule: insert while
// i < K, or the distance ties the previous one by exact float equality
// (the open question of §9 — not approx_equal — preserved verbatim).
func extractKNNExactSet[D nnspace.Scalar](exactDists []goldstandard.ExactDist[D], k int) map[uint64]struct{} {
	set := make(map[uint64]struct{}, k)
	for i := 0; i < len(exactDists); i++ {
		if i < k || (i > 0 && exactDists[i].Dist == exactDists[i-1].Dist) {
			set[exactDists[i].Obj.ID()] = struct{}{}
			continue
		}
		break
	}
	return set
}

// extractRangeExactSet implements spec.md §4.2.1's range rule.
func extractRangeExactSet[D nnspace.Scalar](exactDists []goldstandard.ExactDist[D], radius D) map[uint64]struct{} {
	set := make(map[uint64]struct{})
	for _, ed := range exactDists {
		if ed.Dist > radius {
			break
		}
		set[ed.Obj.ID()] = struct{}{}
	}
	return set
}

// extractKNNApprox implements spec.md §4.2.2's k-NN path: items is already
// ascending (the "prepend a worst-first drain" transformation, performed by
// the bounded queue at drain time); duplicate ids are skipped, not errors.
// Walking ascending order keeps the first (closest) occurrence of a
// duplicate id, where §4.2.2's literal worst-first drain-then-prepend
// would keep the worst. Harmless for well-formed, duplicate-free result
// queues; only matters if a queue somehow yields the same id twice with
// different distances.
func extractKNNApprox[D nnspace.Scalar](items []nnquery.ResultItem[D]) (map[uint64]struct{}, []D) {
	set := make(map[uint64]struct{}, len(items))
	dists := make([]D, 0, len(items))
	for _, it := range items {
		if _, seen := set[it.ID]; seen {
			continue
		}
		set[it.ID] = struct{}{}
		dists = append(dists, it.Distance)
	}
	return set, dists
}

// extractRangeApprox implements spec.md §4.2.2's range path: duplicate ids
// are a precondition violation, and the result is sorted ascending after
// collection (the source prepends then sorts; any insertion order yields
// the same sorted result — see spec.md §9).
func extractRangeApprox[D nnspace.Scalar](items []nnquery.ResultItem[D]) (map[uint64]struct{}, []D, error) {
	set := make(map[uint64]struct{}, len(items))
	dists := make([]D, 0, len(items))
	for _, it := range items {
		if _, seen := set[it.ID]; seen {
			return nil, nil, newError(KindPrecondition, "duplicate object id %d in range query result", it.ID)
		}
		set[it.ID] = struct{}{}
		dists = append(dists, it.Distance)
	}
	sortAscending(dists)
	return set, dists, nil
}

func sortAscending[D nnspace.Scalar](d []D) {
	for i := 1; i < len(d); i++ {
		for j := i; j > 0 && d[j] < d[j-1]; j-- {
			d[j], d[j-1] = d[j-1], d[j]
		}
	}
}

// computeMetrics implements spec.md §4.2.3-4.2.5. k < 0 signals a range
// query, where E is normalized against |exact_result_set| rather than a
// requested K.
func computeMetrics[D nnspace.Scalar](
	exactDists []goldstandard.ExactDist[D],
	exactSet, approxSet map[uint64]struct{},
	approxDistances []D,
	k int,
) (Metrics, error) {
	e := len(exactSet)
	if k >= 0 {
		e = k
	}

	if len(approxDistances) == 0 {
		return computeEmptyApprox(exactSet, e), nil
	}

	recall := computeRecall(exactSet, approxSet, e)
	numberCloser := computeNumberCloser(exactDists, approxDistances[0])
	precision, logRelPos, err := computeRankMetrics(exactDists, approxDistances)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		Recall:            recall,
		NumberCloser:      numberCloser,
		LogRelPosError:    logRelPos,
		PrecisionOfApprox: precision,
	}, nil
}

// computeEmptyApprox implements spec.md §4.2.5.
func computeEmptyApprox(exactSet map[uint64]struct{}, e int) Metrics {
	if len(exactSet) == 0 {
		return Metrics{}
	}
	return Metrics{
		Recall:            0,
		NumberCloser:      e,
		LogRelPosError:    math.Log(float64(e)),
		PrecisionOfApprox: 0,
	}
}

func computeRecall(exactSet, approxSet map[uint64]struct{}, e int) float64 {
	if len(exactSet) == 0 {
		return 1.0
	}
	hits := 0
	for id := range approxSet {
		if _, ok := exactSet[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(e)
}

// computeNumberCloser implements the 1-NN-focused metric of spec.md §4.2.3:
// count exact neighbors strictly nearer than the method's nearest return.
func computeNumberCloser[D nnspace.Scalar](exactDists []goldstandard.ExactDist[D], nearestApprox D) int {
	count := 0
	for _, ed := range exactDists {
		if ed.Dist >= nearestApprox {
			break
		}
		count++
	}
	return count
}

// computeRankMetrics implements spec.md §4.2.3's cursor walk over the
// exact-distance list, validating the "approximate never beats exact"
// invariant and the p >= k cursor invariant along the way.
func computeRankMetrics[D nnspace.Scalar](exactDists []goldstandard.ExactDist[D], approxDistances []D) (precision, logRelPos float64, err error) {
	p := 0
	lastEqualP := 0

	for k, a := range approxDistances {
		if p >= len(exactDists) {
			return 0, 0, newError(KindCorrectness, "ranking cursor ran past the exact distance list at rank %d", k)
		}

		if a < exactDists[p].Dist && !nnspace.ApproxEqual(a, exactDists[p].Dist) {
			return 0, 0, newError(KindCorrectness,
				"approximate distance %v at rank %d is closer than exact distance %v beyond tolerance",
				nnspace.Float64(a), k, nnspace.Float64(exactDists[p].Dist))
		}

		if nnspace.ApproxEqual(exactDists[p].Dist, a) {
			lastEqualP = p
			p++
		} else {
			for p < len(exactDists) && exactDists[p].Dist < a {
				p++
				lastEqualP++
			}
		}

		if p < k {
			return 0, 0, newError(KindCorrectness, "ranking cursor invariant p >= k violated at rank %d (p=%d)", k, p)
		}

		precision += float64(k+1) / float64(lastEqualP+1)
		logRelPos += math.Log(float64(lastEqualP+1) / float64(k+1))
	}

	n := float64(len(approxDistances))
	return precision / n, logRelPos / n, nil
}
