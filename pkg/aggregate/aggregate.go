// Package aggregate implements the per-method, per-test-set accumulator
// that the benchmark driver and workers feed measurements into. Spec.md
// §9 calls for exactly one coarse mutex protecting all writes, since
// accounting always happens outside the timed region.
package aggregate

import (
	"math"
	"sync"
	"time"
)

// series accumulates the sum and sum-of-squares of one additive metric,
// giving Mean, Variance, and STDDev over however many observations have
// been folded in. Variance is the population variance (sumSq/n - mean^2);
// repeated trials of the same (method, configuration) pair are the whole
// population being summarized, not a sample drawn from a larger one.
type series struct {
	sum   float64
	sumSq float64
	n     int64
}

func (s *series) add(v float64) {
	s.sum += v
	s.sumSq += v * v
	s.n++
}

func (s *series) combine(o series) {
	s.sum += o.sum
	s.sumSq += o.sumSq
	s.n += o.n
}

// Mean returns the running average, or NaN if no observations were added.
func (s series) Mean() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	return s.sum / float64(s.n)
}

// Variance returns the population variance, or NaN if no observations
// were added.
func (s series) Variance() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	mean := s.sum / float64(s.n)
	v := s.sumSq/float64(s.n) - mean*mean
	if v < 1e-12*mean*mean {
		// Floating-point cancellation leaves a tiny residue (negative or
		// positive) when every observation is near-identical; a value
		// below 1e-12 of the squared mean is treated as zero.
		v = 0
	}
	return v
}

// STDDev returns the square root of Variance.
func (s series) STDDev() float64 {
	return math.Sqrt(s.Variance())
}

// N reports how many observations this series has accumulated.
func (s series) N() int64 { return s.n }

// MetaAnalysis accumulates efficiency and effectiveness observations for
// one method under one test-set configuration. All Add* methods may be
// called concurrently; the single mutex makes that safe at the cost of
// contention that is acceptable because accounting never runs inside a
// timed region.
type MetaAnalysis struct {
	mu sync.Mutex

	queryTimeSum time.Duration
	queryTimeN   int64
	// queryTimeSeries tracks the same observations in float64 seconds,
	// purely so Variance/STDDev are available; MeanQueryTime keeps using
	// the integer time.Duration division above for exactness.
	queryTimeSeries series

	distCompSum int64
	distComp    series

	recall       series
	logRelPos    series
	numCloser    series
	precision    series

	maxResultSize int
	resultSize    series

	imprEfficiency float64
	imprDistComp   float64
}

// New returns an empty accumulator.
func New() *MetaAnalysis {
	return &MetaAnalysis{}
}

// AddQueryTime records one worker's elapsed time answering a query.
func (m *MetaAnalysis) AddQueryTime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryTimeSum += d
	m.queryTimeN++
	m.queryTimeSeries.add(d.Seconds())
}

// AddDistComp records how many distance computations one query performed,
// and folds the query's result size into the running max/average trackers.
func (m *MetaAnalysis) AddDistComp(n int64, resultSize int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distCompSum += n
	m.distComp.add(float64(n))
	if resultSize > m.maxResultSize {
		m.maxResultSize = resultSize
	}
	m.resultSize.add(float64(resultSize))
}

// AddRecall records one query's recall observation.
func (m *MetaAnalysis) AddRecall(r float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recall.add(r)
}

// AddLogRelPosError records one query's log relative-position error.
func (m *MetaAnalysis) AddLogRelPosError(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logRelPos.add(v)
}

// AddNumCloser records one query's number-closer observation.
func (m *MetaAnalysis) AddNumCloser(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.numCloser.add(float64(n))
}

// AddPrecisionOfApprox records one query's precision-of-approximation.
func (m *MetaAnalysis) AddPrecisionOfApprox(p float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.precision.add(p)
}

// SetImprEfficiency records Pass 2's improvement-in-efficiency figure:
// seq_search_time / method_search_time, averaged as it accumulates across
// queries (last-writer composition is not meaningful here, so the driver
// is expected to call this once per query and read Mean afterward via
// AddQueryTime-style accounting — callers that want a running mean should
// prefer AddQueryTime-style accumulation; this setter keeps the latest
// observation for drivers that snapshot once per test-set).
func (m *MetaAnalysis) SetImprEfficiency(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imprEfficiency = v
}

// SetImprDistComp records Pass 1's |data| / avg_num_dist_comp figure.
func (m *MetaAnalysis) SetImprDistComp(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imprDistComp = v
}

// RecallStats, LogRelPosErrStats, NumCloserStats, PrecisionStats,
// DistCompStats, ResultSizeStats, and QueryTimeStats each expose
// Mean()/Variance()/STDDev()/N() for their metric series, satisfying the
// "mean/variance over repeated trials" requirement directly rather than
// only through single Snapshot fields. All must be read after every
// writer for this test-set configuration has joined, same as Snapshot.
func (m *MetaAnalysis) RecallStats() SeriesStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SeriesStats(m.recall)
}

func (m *MetaAnalysis) LogRelPosErrStats() SeriesStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SeriesStats(m.logRelPos)
}

func (m *MetaAnalysis) NumCloserStats() SeriesStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SeriesStats(m.numCloser)
}

func (m *MetaAnalysis) PrecisionStats() SeriesStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SeriesStats(m.precision)
}

func (m *MetaAnalysis) DistCompStats() SeriesStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SeriesStats(m.distComp)
}

func (m *MetaAnalysis) ResultSizeStats() SeriesStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SeriesStats(m.resultSize)
}

// QueryTimeStats reports query time statistics in seconds, since Variance
// and STDDev over a time.Duration series don't have a meaningful
// time.Duration unit (seconds squared isn't a duration).
func (m *MetaAnalysis) QueryTimeStats() SeriesStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SeriesStats(m.queryTimeSeries)
}

// SeriesStats is the read-only, exported view of a series: Mean, Variance,
// STDDev, and N (observation count).
type SeriesStats series

func (s SeriesStats) Mean() float64     { return series(s).Mean() }
func (s SeriesStats) Variance() float64 { return series(s).Variance() }
func (s SeriesStats) STDDev() float64   { return series(s).STDDev() }
func (s SeriesStats) N() int64          { return series(s).N() }

// Snapshot is a read-only view of the accumulator, taken after all writers
// for a test-set configuration have joined (spec.md §5's ordering
// guarantee: no synchronization is needed for this read).
type Snapshot struct {
	MeanQueryTime time.Duration
	MeanDistComp  float64
	MeanRecall    float64
	MeanLogRelPosErr float64
	MeanNumCloser    float64
	MeanPrecision    float64
	MaxResultSize    int
	MeanResultSize   float64
	ImprEfficiency   float64
	ImprDistComp     float64

	// VarianceX/STDDevX mirror the MeanX fields above, giving the
	// "mean/variance over repeated trials" figures spec.md §2 C3 calls
	// for in a single snapshot, without requiring a separate *Stats()
	// call per metric.
	VarianceRecall       float64
	STDDevRecall         float64
	VarianceLogRelPosErr float64
	STDDevLogRelPosErr   float64
	VarianceNumCloser    float64
	STDDevNumCloser      float64
	VariancePrecision    float64
	STDDevPrecision      float64
	VarianceDistComp     float64
	STDDevDistComp       float64
	VarianceResultSize   float64
	STDDevResultSize     float64
	// VarianceQueryTime/STDDevQueryTime are in seconds^2/seconds, not a
	// time.Duration, for the same reason QueryTimeStats reports seconds.
	VarianceQueryTime float64
	STDDevQueryTime   float64
}

// Snapshot reads the current accumulated state. Must only be called once
// all workers that could write to m have joined.
func (m *MetaAnalysis) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		MeanQueryTime:    meanDuration(m.queryTimeSum, m.queryTimeN),
		MeanDistComp:     m.distComp.Mean(),
		MeanRecall:       m.recall.Mean(),
		MeanLogRelPosErr: m.logRelPos.Mean(),
		MeanNumCloser:    m.numCloser.Mean(),
		MeanPrecision:    m.precision.Mean(),
		MaxResultSize:    m.maxResultSize,
		MeanResultSize:   m.resultSize.Mean(),
		ImprEfficiency:   m.imprEfficiency,
		ImprDistComp:     m.imprDistComp,

		VarianceRecall:       m.recall.Variance(),
		STDDevRecall:         m.recall.STDDev(),
		VarianceLogRelPosErr: m.logRelPos.Variance(),
		STDDevLogRelPosErr:   m.logRelPos.STDDev(),
		VarianceNumCloser:    m.numCloser.Variance(),
		STDDevNumCloser:      m.numCloser.STDDev(),
		VariancePrecision:    m.precision.Variance(),
		STDDevPrecision:      m.precision.STDDev(),
		VarianceDistComp:     m.distComp.Variance(),
		STDDevDistComp:       m.distComp.STDDev(),
		VarianceResultSize:   m.resultSize.Variance(),
		STDDevResultSize:     m.resultSize.STDDev(),
		VarianceQueryTime:    m.queryTimeSeries.Variance(),
		STDDevQueryTime:      m.queryTimeSeries.STDDev(),
	}
}

// Combine folds other's sums into m. Intended for merging per-worker
// accumulators when a driver chooses to shard accounting instead of
// sharing one MetaAnalysis (not required by spec.md, but a natural
// extension once W grows large); not used by the default single-mutex
// path described in §4.3.
func (m *MetaAnalysis) Combine(other *MetaAnalysis) {
	other.mu.Lock()
	queryTimeSum, queryTimeN := other.queryTimeSum, other.queryTimeN
	queryTimeSeries := other.queryTimeSeries
	distCompSum := other.distCompSum
	distComp := other.distComp
	recall := other.recall
	logRelPos := other.logRelPos
	numCloser := other.numCloser
	precision := other.precision
	resultSize := other.resultSize
	maxResultSize := other.maxResultSize
	other.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryTimeSum += queryTimeSum
	m.queryTimeN += queryTimeN
	m.queryTimeSeries.combine(queryTimeSeries)
	m.distCompSum += distCompSum
	m.distComp.combine(distComp)
	m.recall.combine(recall)
	m.logRelPos.combine(logRelPos)
	m.numCloser.combine(numCloser)
	m.precision.combine(precision)
	m.resultSize.combine(resultSize)
	if maxResultSize > m.maxResultSize {
		m.maxResultSize = maxResultSize
	}
}

func meanDuration(sum time.Duration, n int64) time.Duration {
	if n == 0 {
		return 0
	}
	return sum / time.Duration(n)
}
