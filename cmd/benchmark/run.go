package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vectorbench/vectorbench/pkg/aggregate"
	"github.com/vectorbench/vectorbench/pkg/experiment"
	"github.com/vectorbench/vectorbench/pkg/goldcache"
	"github.com/vectorbench/vectorbench/pkg/methods"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
	"github.com/vectorbench/vectorbench/pkg/resample"
	"github.com/vectorbench/vectorbench/pkg/vecfile"
)

var (
	runDataFile    string
	runQueryFile   string
	runSpace       string
	runMethods     []string
	runKs          []int
	runRanges      []float64
	runThreads     int
	runEps         float32
	runSampleFrac  float64
	runSampleSeed  int64
	runExportJSON  string
	runExportZstd  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a two-pass benchmark sweep against a data/query file pair",
	Example: `  benchmark run --data colors112.txt --queries colors112_queries.txt \
    --space euclidean --method hnsw,ivf-flat --knn 1,10,100 --threads 8`,
	RunE: runBenchmark,
}

func init() {
	runCmd.Flags().StringVar(&runDataFile, "data", "", "path to the data set file (required)")
	runCmd.Flags().StringVar(&runQueryFile, "queries", "", "path to the query set file (required)")
	runCmd.Flags().StringVar(&runSpace, "space", "euclidean", "space: euclidean, cosine, sparse-cosine, sparse-angular")
	runCmd.Flags().StringSliceVar(&runMethods, "method", []string{"hnsw"}, "comma-separated method names to benchmark")
	runCmd.Flags().IntSliceVar(&runKs, "knn", []int{1, 10, 100}, "comma-separated k values for k-NN queries")
	runCmd.Flags().Float64SliceVar(&runRanges, "range", nil, "comma-separated radii for range queries")
	runCmd.Flags().IntVar(&runThreads, "threads", 4, "pass 1 worker goroutines")
	runCmd.Flags().Float32Var(&runEps, "eps", 0, "k-NN approximation slack")
	runCmd.Flags().Float64Var(&runSampleFrac, "sample-frac", 1.0, "query subsampling fraction, 1.0 runs every query")
	runCmd.Flags().Int64Var(&runSampleSeed, "sample-seed", 1, "subsampling RNG seed")
	runCmd.Flags().StringVar(&runExportJSON, "export-json", "", "write results as JSON to this path")
	runCmd.Flags().StringVar(&runExportZstd, "export-zstd", "", "write results as zstd-compressed JSON to this path")

	runCmd.MarkFlagRequired("data")
	runCmd.MarkFlagRequired("queries")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	space, err := spaceForName(runSpace)
	if err != nil {
		return err
	}

	data, err := vecfile.Load(runDataFile)
	if err != nil {
		return fmt.Errorf("loading data file: %w", err)
	}
	queries, err := vecfile.Load(runQueryFile)
	if err != nil {
		return fmt.Errorf("loading query file: %w", err)
	}
	fmt.Printf("loaded %d data points, %d queries\n", len(data), len(queries))

	registry := methods.NewRegistry[float32]()
	methods.RegisterAll(registry)

	var indexes []experiment.NamedMethod[float32]
	rangeAgg := make(map[string]*aggregate.MetaAnalysis)
	knnAgg := make(map[string]*aggregate.MetaAnalysis)

	for _, name := range runMethods {
		m, err := registry.Build(name)
		if err != nil {
			return err
		}
		space.SetIndexPhase()
		fmt.Printf("building %s...\n", name)
		if err := m.Build(space, data); err != nil {
			return fmt.Errorf("building %s: %w", name, err)
		}
		indexes = append(indexes, experiment.NamedMethod[float32]{Name: name, Method: m})
		rangeAgg[name] = aggregate.New()
		knnAgg[name] = aggregate.New()
	}

	ranges := make([]float32, len(runRanges))
	for i, r := range runRanges {
		ranges[i] = float32(r)
	}

	cfg := &experiment.Config[float32]{
		Space:   space,
		Data:    data,
		Queries: queries,
		Ranges:  ranges,
		KNNKs:   runKs,
		Eps:     runEps,
	}

	cache, err := goldcache.New[float32](1_000_000)
	if err != nil {
		return fmt.Errorf("creating gold cache: %w", err)
	}
	defer cache.Close()

	var sampler experiment.QuerySampler
	if runSampleFrac > 0 && runSampleFrac < 1 {
		sampler = resample.New(runSampleFrac, 1, runSampleSeed)
	}

	driver := &experiment.Driver[float32]{
		LogInfo:   true,
		ThreadQty: runThreads,
		Cache:     cache,
		Sampler:   sampler,
	}

	ctx := context.Background()
	testSetID := runDataFile
	if err := driver.RunAll(ctx, testSetID, rangeAgg, knnAgg, cfg, indexes); err != nil {
		return err
	}

	printReport("Range results", runMethods, rangeAgg)
	printReport("k-NN results", runMethods, knnAgg)

	if runExportJSON != "" || runExportZstd != "" {
		results := experiment.Snapshot(testSetID, rangeAgg, knnAgg)
		if runExportJSON != "" {
			raw, err := experiment.ExportJSON(results)
			if err != nil {
				return fmt.Errorf("exporting json: %w", err)
			}
			if err := os.WriteFile(runExportJSON, raw, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", runExportJSON, err)
			}
		}
		if runExportZstd != "" {
			raw, err := experiment.ExportJSONZstd(results)
			if err != nil {
				return fmt.Errorf("exporting zstd: %w", err)
			}
			if err := os.WriteFile(runExportZstd, raw, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", runExportZstd, err)
			}
		}
	}

	return nil
}

func spaceForName(name string) (nnspace.Space[float32], error) {
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
		return nil, fmt.Errorf("unknown space %q", name)
	}
}

func printReport(title string, names []string, agg map[string]*aggregate.MetaAnalysis) {
	sorted := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := agg[n]; ok {
			sorted = append(sorted, n)
		}
	}
	sort.Strings(sorted)
	if len(sorted) == 0 {
		return
	}

	fmt.Printf("\n=== %s ===\n", title)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "method\trecall\tprecision\tlogRelPos\tdistComps\timprEff\timprDistComp")
	for _, name := range sorted {
		s := agg[name].Snapshot()
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.1f\t%.2fx\t%.2fx\n",
			name, s.MeanRecall, s.MeanPrecision, s.MeanLogRelPosErr,
			s.MeanDistComp, s.ImprEfficiency, s.ImprDistComp)
	}
	w.Flush()
}
