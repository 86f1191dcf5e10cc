package rest

import (
	"context"
	"fmt"

	"github.com/vectorbench/vectorbench/pkg/aggregate"
	"github.com/vectorbench/vectorbench/pkg/config"
	"github.com/vectorbench/vectorbench/pkg/experiment"
	"github.com/vectorbench/vectorbench/pkg/goldcache"
	"github.com/vectorbench/vectorbench/pkg/methods"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
	"github.com/vectorbench/vectorbench/pkg/resample"
	"github.com/vectorbench/vectorbench/pkg/vecfile"
)

// Runner turns a submitted ExperimentFile into a full two-pass benchmark
// run, the in-process replacement for the gRPC call the teacher's REST
// handlers used to make.
type Runner struct {
	registry *methods.Registry[float32]
}

// NewRunner builds a Runner with every known method adapter registered.
func NewRunner() *Runner {
	r := methods.NewRegistry[float32]()
	methods.RegisterAll(r)
	return &Runner{registry: r}
}

func spaceFor(name string) (nnspace.Space[float32], error) {
	switch name {
	case "", "euclidean":
		return nnspace.NewDenseEuclidean(), nil
	case "cosine":
		return nnspace.NewDenseCosine(), nil
	case "sparse-cosine":
		return nnspace.NewSparseCosine(), nil
	case "sparse-angular":
		return nnspace.NewSparseAngular(), nil
	default:
		return nil, fmt.Errorf("api: unknown space %q", name)
	}
}

// Run executes ef end to end: load data/queries, build the named methods
// against the configured space, run the two-pass driver, and return a
// JSON-ready snapshot of every method's aggregators.
func (rn *Runner) Run(ctx context.Context, ef *config.ExperimentFile) (*RunResult, error) {
	space, err := spaceFor(ef.Space)
	if err != nil {
		return nil, err
	}

	data, err := vecfile.Load(ef.DataPath)
	if err != nil {
		return nil, err
	}
	queries, err := vecfile.Load(ef.QueryPath)
	if err != nil {
		return nil, err
	}

	var indexes []experiment.NamedMethod[float32]
	rangeAgg := make(map[string]*aggregate.MetaAnalysis)
	knnAgg := make(map[string]*aggregate.MetaAnalysis)

	for _, name := range ef.Methods {
		m, err := rn.registry.Build(name)
		if err != nil {
			return nil, err
		}
		space.SetIndexPhase()
		if err := m.Build(space, data); err != nil {
			return nil, fmt.Errorf("api: build %s: %w", name, err)
		}
		indexes = append(indexes, experiment.NamedMethod[float32]{Name: name, Method: m})
		rangeAgg[name] = aggregate.New()
		knnAgg[name] = aggregate.New()
	}

	ranges := make([]float32, len(ef.Ranges))
	for i, r := range ef.Ranges {
		ranges[i] = float32(r)
	}

	cfg := &experiment.Config[float32]{
		Space:   space,
		Data:    data,
		Queries: queries,
		Ranges:  ranges,
		KNNKs:   ef.Ks,
		Eps:     ef.Eps,
	}

	threadQty := ef.ThreadQty
	if threadQty <= 0 {
		threadQty = 1
	}

	cache, err := goldcache.New[float32](1_000_000)
	if err != nil {
		return nil, fmt.Errorf("api: create gold cache: %w", err)
	}
	defer cache.Close()

	var sampler experiment.QuerySampler
	if ef.SampleFrac > 0 && ef.SampleFrac < 1 {
		sampler = resample.New(ef.SampleFrac, 1, 1)
	}

	driver := &experiment.Driver[float32]{
		ThreadQty: threadQty,
		Cache:     cache,
		Sampler:   sampler,
	}

	if err := driver.RunAll(ctx, ef.Name, rangeAgg, knnAgg, cfg, indexes); err != nil {
		return nil, err
	}

	result := &RunResult{
		RangeResults: make(map[string]aggregate.Snapshot, len(rangeAgg)),
		KNNResults:   make(map[string]aggregate.Snapshot, len(knnAgg)),
	}
	for name, a := range rangeAgg {
		result.RangeResults[name] = a.Snapshot()
	}
	for name, a := range knnAgg {
		result.KNNResults[name] = a.Snapshot()
	}
	return result, nil
}
