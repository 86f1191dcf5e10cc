// Package resample implements query-set subsampling for experiment runs
// too large to execute exhaustively, replacing the teacher package's
// metadata filter predicates (pkg/search/filter.go) with index sampling —
// there is no metadata-filtered search in this domain, but the same
// "narrow a working set before the expensive part runs" shape applies to
// picking a subset of queries to benchmark.
package resample

import "math/rand"

// Sampler draws a subset of query indices out of [0, n) without
// replacement. It implements pkg/experiment's QuerySampler interface
// structurally.
type Sampler struct {
	rng      *rand.Rand
	fraction float64
	min      int
}

// New returns a Sampler that keeps roughly fraction of queries (0 < f <= 1),
// but never fewer than min when n >= min. seed pins the draw for
// reproducible benchmark runs; pass a fixed value, not a wall-clock one.
func New(fraction float64, min int, seed int64) *Sampler {
	if fraction <= 0 || fraction > 1 {
		fraction = 1
	}
	return &Sampler{rng: rand.New(rand.NewSource(seed)), fraction: fraction, min: min}
}

// Sample returns a sorted-by-draw-order slice of distinct indices into
// [0, n), sized min(n, max(min, floor(n*fraction))).
func (s *Sampler) Sample(n int) []int {
	if n == 0 {
		return nil
	}
	want := int(float64(n) * s.fraction)
	if want < s.min {
		want = s.min
	}
	if want > n {
		want = n
	}

	// Partial Fisher-Yates: shuffle only the prefix we need.
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < want; i++ {
		j := i + s.rng.Intn(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:want]
}
