package experiment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/vectorbench/vectorbench/pkg/aggregate"
)

// Results is the final per-method snapshot of one testSetID's run, the
// machine-readable analogue of the original tool's end-of-sweep LOG(INFO)
// dump (experiments.h).
type Results struct {
	TestSetID string                        `json:"test_set_id"`
	Range     map[string]aggregate.Snapshot `json:"range_results"`
	KNN       map[string]aggregate.Snapshot `json:"knn_results"`
}

// ExportJSON serializes r as JSON.
func ExportJSON(r *Results) ([]byte, error) {
	return json.Marshal(r)
}

// ExportJSONZstd serializes r as JSON then compresses it with zstd, for
// archiving many runs cheaply between benchmark sweeps.
func ExportJSONZstd(r *Results) ([]byte, error) {
	raw, err := ExportJSON(r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("experiment: create zstd writer: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return nil, fmt.Errorf("experiment: zstd write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("experiment: zstd close: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportJSONZstd reverses ExportJSONZstd.
func ImportJSONZstd(data []byte) (*Results, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("experiment: create zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("experiment: zstd read: %w", err)
	}

	var r Results
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("experiment: unmarshal results: %w", err)
	}
	return &r, nil
}

// Snapshot reduces a map of per-method aggregators to a Results payload.
func Snapshot(testSetID string, rangeAgg, knnAgg map[string]*aggregate.MetaAnalysis) *Results {
	r := &Results{
		TestSetID: testSetID,
		Range:     make(map[string]aggregate.Snapshot, len(rangeAgg)),
		KNN:       make(map[string]aggregate.Snapshot, len(knnAgg)),
	}
	for name, a := range rangeAgg {
		r.Range[name] = a.Snapshot()
	}
	for name, a := range knnAgg {
		r.KNN[name] = a.Snapshot()
	}
	return r
}
