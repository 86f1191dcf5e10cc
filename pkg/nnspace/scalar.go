package nnspace

import "math"

// Scalar is the numeric type set a distance value can take. Integer variants
// participate only where a method under test actually supports them (see
// spec.md §9's "Polymorphism over distance scalar").
type Scalar interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// Abs returns the absolute value of x.
func Abs[D Scalar](x D) D {
	if x < 0 {
		return -x
	}
	return x
}

// Float64 converts a distance value to float64 for log-space metrics.
func Float64[D Scalar](x D) float64 {
	return float64(x)
}

// epsRel and epsAbs are the tolerance constants from spec.md §4.2.4, used
// both to decide whether an "approximate beats exact" observation is a real
// correctness bug and, reused here, to decide whether two distances should
// be treated as equal when advancing EvalResults' ranking cursor. The two
// uses share one formula in the original source; that sharing is preserved.
const (
	epsRel = 2e-5
	epsAbs = 5e-4
)

// ApproxEqual reports whether a and b are equal up to the floating-point
// tolerance of spec.md §4.2.4: equal unless the relative AND absolute gaps
// both exceed their thresholds.
func ApproxEqual[D Scalar](a, b D) bool {
	return approxEqualF(Float64(a), Float64(b))
}

func approxEqualF(a, b float64) bool {
	aa, ab := math.Abs(a), math.Abs(b)
	mx := math.Max(aa, ab)
	mn := math.Min(aa, ab)
	if mx == 0 {
		return true
	}
	return !((1-mn/mx) > epsRel && (mx-mn) > epsAbs)
}
