// Package experiment implements the top-level two-pass benchmark driver:
// for each method and each configured radius or k, Pass 1 measures
// parallel search efficiency and Pass 2 measures search effectiveness
// against the gold standard, recording both into per-method aggregators.
package experiment

import (
	"context"
	"log"
	"time"

	"github.com/vectorbench/vectorbench/pkg/aggregate"
	"github.com/vectorbench/vectorbench/pkg/bench"
	"github.com/vectorbench/vectorbench/pkg/evalresults"
	"github.com/vectorbench/vectorbench/pkg/goldstandard"
	"github.com/vectorbench/vectorbench/pkg/methods"
	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

// QuerySampler narrows a configuration's query set before a run, e.g. to
// spot-check a large test set instead of running every query. Optional;
// RunAll runs the full set when none is supplied.
type QuerySampler interface {
	Sample(n int) []int
}

// NamedMethod pairs a method instance with the name its aggregators are
// keyed by — spec.md §6's "indexes" argument to run_all.
type NamedMethod[D nnspace.Scalar] struct {
	Name   string
	Method methods.Method[D]
}

// Driver runs the two-pass protocol described in spec.md §4.5.
type Driver[D nnspace.Scalar] struct {
	LogInfo   bool
	ThreadQty int
	Cache     goldstandard.Cache[D]
	Sampler   QuerySampler
}

// RunAll is the exposed contract of spec.md §6: for every configured
// radius and k, runs Execute against every method in indexes, recording
// range results into rangeAgg and k-NN results into knnAgg (both keyed by
// method name). testSetID is carried only for logging.
func (d *Driver[D]) RunAll(
	ctx context.Context,
	testSetID string,
	rangeAgg, knnAgg map[string]*aggregate.MetaAnalysis,
	cfg *Config[D],
	indexes []NamedMethod[D],
) error {
	if d.LogInfo {
		log.Printf("experiment[%s]: %s", testSetID, cfg.PrintInfo())
	}

	queries := cfg.Queries
	if d.Sampler != nil {
		idxs := d.Sampler.Sample(len(queries))
		narrowed := make(nnobject.ObjectVector, len(idxs))
		for i, qi := range idxs {
			narrowed[i] = queries[qi]
		}
		queries = narrowed
	}

	for _, r := range cfg.Ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := d.execute(cfg, queries, bench.RangeKind, 0, r, rangeAgg, indexes); err != nil {
			return err
		}
	}

	for _, k := range cfg.KNNKs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := d.execute(cfg, queries, bench.KNNKind, k, zeroD[D](), knnAgg, indexes); err != nil {
			return err
		}
	}

	return nil
}

func zeroD[D nnspace.Scalar]() D {
	var z D
	return z
}

// execute runs one (kind, parameter) configuration's two passes across
// every method in indexes.
func (d *Driver[D]) execute(
	cfg *Config[D],
	queries nnobject.ObjectVector,
	kind bench.Kind,
	k int,
	radius D,
	agg map[string]*aggregate.MetaAnalysis,
	indexes []NamedMethod[D],
) error {
	// Pass 1 — efficiency. Query-phase distances, because the methods
	// under test may implement asymmetric query-time optimizations.
	cfg.Space.SetQueryPhase()
	for _, nm := range indexes {
		a := agg[nm.Name]
		w := &bench.Worker[D]{
			Method:  nm.Method,
			Kind:    kind,
			K:       k,
			Eps:     cfg.Eps,
			Radius:  radius,
			Queries: queries,
			Agg:     a,
		}
		if err := bench.RunAll(w, d.ThreadQty); err != nil {
			return err
		}
		snap := a.Snapshot()
		if snap.MeanDistComp > 0 {
			a.SetImprDistComp(float64(len(cfg.Data)) / snap.MeanDistComp)
		}
	}

	// Pass 2 — effectiveness. Back to index phase: the gold standard is
	// always an index-phase oracle (spec.md §4.1).
	cfg.Space.SetIndexPhase()

	totalSeqWall := make(map[string]int64) // nanoseconds, summed once per query
	totalMethodWall := make(map[string]int64)

	for _, q := range queries {
		gold := goldstandard.New[D](cfg.Space, cfg.Data, q, d.Cache)
		seqNanos := gold.SeqSearchWallTime().Nanoseconds()

		for _, nm := range indexes {
			var results nnquery.Results[D]
			var err error
			var elapsed int64

			switch kind {
			case bench.KNNKind:
				start := time.Now()
				results, err = nm.Method.SearchKNN(q, k, cfg.Eps)
				elapsed = time.Since(start).Nanoseconds()
			case bench.RangeKind:
				start := time.Now()
				results, err = nm.Method.SearchRange(q, radius)
				elapsed = time.Since(start).Nanoseconds()
			}
			if err != nil {
				return err
			}

			var evalErr error
			var metrics evalresults.Metrics
			if kind == bench.KNNKind {
				var er *evalresults.EvalResults[D]
				er, evalErr = evalresults.NewKNN(gold, results, k)
				if evalErr == nil {
					metrics = er.Metrics()
				}
			} else {
				var er *evalresults.EvalResults[D]
				er, evalErr = evalresults.NewRange(gold, results, radius)
				if evalErr == nil {
					metrics = er.Metrics()
				}
			}
			if evalErr != nil {
				return evalErr
			}

			a := agg[nm.Name]
			a.AddRecall(metrics.Recall)
			a.AddLogRelPosError(metrics.LogRelPosError)
			a.AddNumCloser(metrics.NumberCloser)
			a.AddPrecisionOfApprox(metrics.PrecisionOfApprox)

			totalSeqWall[nm.Name] += seqNanos
			totalMethodWall[nm.Name] += elapsed
		}
	}

	for _, nm := range indexes {
		if totalMethodWall[nm.Name] > 0 {
			agg[nm.Name].SetImprEfficiency(float64(totalSeqWall[nm.Name]) / float64(totalMethodWall[nm.Name]))
		}
	}

	return nil
}
