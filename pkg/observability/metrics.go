package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a benchmark run.
type Metrics struct {
	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	RunErrors   *prometheus.CounterVec

	// Query metrics
	QueriesSearched prometheus.Counter

	// Effectiveness metrics
	Recall            *prometheus.HistogramVec
	PrecisionOfApprox *prometheus.HistogramVec
	LogRelPosError    *prometheus.HistogramVec

	// Efficiency metrics
	DistanceComps   *prometheus.CounterVec
	ResultSize      *prometheus.HistogramVec
	ImprEfficiency  *prometheus.GaugeVec
	ImprDistComp    *prometheus.GaugeVec

	// Gold-standard cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheSize   prometheus.Gauge

	// Campaign metrics
	CampaignsTotal     prometheus.Gauge
	CampaignQuotaUsage *prometheus.GaugeVec

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
	CPUUsage        prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectorbench_runs_total",
				Help: "Total number of (method, kind) benchmark runs by status",
			},
			[]string{"method", "kind", "status"},
		),
		RunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vectorbench_run_duration_seconds",
				Help:    "Wall time of one query search call",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "kind"},
		),
		RunErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectorbench_run_errors_total",
				Help: "Total number of run errors by method and error kind",
			},
			[]string{"method", "error_kind"},
		),

		QueriesSearched: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "vectorbench_queries_searched_total",
				Help: "Total number of queries executed across all methods",
			},
		),

		Recall: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vectorbench_recall",
				Help:    "Per-query recall against the gold standard (0-1)",
				Buckets: []float64{.5, .7, .8, .85, .9, .92, .94, .95, .96, .97, .98, .99, 1.0},
			},
			[]string{"method"},
		),
		PrecisionOfApprox: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vectorbench_precision_of_approx",
				Help:    "Per-query rank-position precision against the gold standard",
				Buckets: []float64{0, .25, .5, .7, .8, .9, .95, .99, 1.0},
			},
			[]string{"method"},
		),
		LogRelPosError: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vectorbench_log_rel_pos_error",
				Help:    "Per-query log relative position error",
				Buckets: []float64{0, .01, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"method"},
		),

		DistanceComps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectorbench_distance_computations_total",
				Help: "Total distance computations performed by method",
			},
			[]string{"method"},
		),
		ResultSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vectorbench_result_size",
				Help:    "Number of results returned by a search",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
			},
			[]string{"method"},
		),
		ImprEfficiency: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vectorbench_improvement_in_efficiency",
				Help: "Sequential search wall time divided by method wall time",
			},
			[]string{"method"},
		),
		ImprDistComp: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vectorbench_improvement_in_dist_comp",
				Help: "Data set size divided by mean distance computations per query",
			},
			[]string{"method"},
		),

		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "vectorbench_goldcache_hits_total",
				Help: "Total number of gold-standard distance cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "vectorbench_goldcache_misses_total",
				Help: "Total number of gold-standard distance cache misses",
			},
		),
		CacheSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vectorbench_goldcache_size",
				Help: "Current number of entries in the gold-standard distance cache",
			},
		),

		CampaignsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vectorbench_campaigns_total",
				Help: "Total number of active campaigns",
			},
		),
		CampaignQuotaUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vectorbench_campaign_quota_usage",
				Help: "Campaign quota usage percentage by campaign and resource",
			},
			[]string{"campaign", "resource"},
		),

		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vectorbench_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vectorbench_memory_bytes",
				Help: "Memory usage in bytes",
			},
		),
		CPUUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vectorbench_cpu_usage",
				Help: "CPU usage percentage",
			},
		),
	}

	return m
}

// RecordRun records one query search call's duration and status.
func (m *Metrics) RecordRun(method, kind, status string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(method, kind, status).Inc()
	m.RunDuration.WithLabelValues(method, kind).Observe(duration.Seconds())
}

// RecordError records a run error by method and kind.
func (m *Metrics) RecordError(method, errorKind string) {
	m.RunErrors.WithLabelValues(method, errorKind).Inc()
}

// RecordQuery records one executed query's effectiveness and efficiency
// metrics for a method.
func (m *Metrics) RecordQuery(method string, recall, precision, logRelPos float64, distComps int64, resultSize int) {
	m.QueriesSearched.Inc()
	m.Recall.WithLabelValues(method).Observe(recall)
	m.PrecisionOfApprox.WithLabelValues(method).Observe(precision)
	m.LogRelPosError.WithLabelValues(method).Observe(logRelPos)
	m.DistanceComps.WithLabelValues(method).Add(float64(distComps))
	m.ResultSize.WithLabelValues(method).Observe(float64(resultSize))
}

// RecordCacheHit records a gold-standard distance cache hit.
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a gold-standard distance cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// UpdateImprEfficiency sets the current efficiency-improvement gauge for a method.
func (m *Metrics) UpdateImprEfficiency(method string, value float64) {
	m.ImprEfficiency.WithLabelValues(method).Set(value)
}

// UpdateImprDistComp sets the current distance-computation-improvement gauge for a method.
func (m *Metrics) UpdateImprDistComp(method string, value float64) {
	m.ImprDistComp.WithLabelValues(method).Set(value)
}

// UpdateCampaignCount updates the total active campaign count.
func (m *Metrics) UpdateCampaignCount(count int) {
	m.CampaignsTotal.Set(float64(count))
}

// UpdateCampaignQuota updates campaign quota usage.
func (m *Metrics) UpdateCampaignQuota(campaign, resource string, usage float64) {
	m.CampaignQuotaUsage.WithLabelValues(campaign, resource).Set(usage)
}

// UpdateGoroutineCount updates goroutine count.
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates memory usage.
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

// UpdateCPUUsage updates CPU usage.
func (m *Metrics) UpdateCPUUsage(percentage float64) {
	m.CPUUsage.Set(percentage)
}

// UpdateCacheSize updates the gold-standard distance cache size gauge.
func (m *Metrics) UpdateCacheSize(size int) {
	m.CacheSize.Set(float64(size))
}
