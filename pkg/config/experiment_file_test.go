package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeExperimentFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "experiment.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write experiment file: %v", err)
	}
	return path
}

func TestLoadExperimentFile(t *testing.T) {
	dir := t.TempDir()
	path := writeExperimentFile(t, dir, `
name: sweep-1
data_path: data.txt
query_path: queries.txt
space: cosine
methods: [hnsw, ivf]
ranges: [0.1, 0.2]
thread_qty: 4
`)

	ef, err := LoadExperimentFile(path)
	if err != nil {
		t.Fatalf("LoadExperimentFile: %v", err)
	}
	if ef.Name != "sweep-1" {
		t.Errorf("expected name sweep-1, got %q", ef.Name)
	}
	if ef.Space != "cosine" {
		t.Errorf("expected space cosine, got %q", ef.Space)
	}
	if len(ef.Methods) != 2 {
		t.Errorf("expected 2 methods, got %d", len(ef.Methods))
	}
	if ef.ThreadQty != 4 {
		t.Errorf("expected thread_qty 4, got %d", ef.ThreadQty)
	}
}

func TestLoadExperimentFileMissing(t *testing.T) {
	if _, err := LoadExperimentFile("/no/such/experiment.yaml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadExperimentFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeExperimentFile(t, dir, "name: [unterminated\n")
	if _, err := LoadExperimentFile(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestLoadExperimentFileFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := writeExperimentFile(t, dir, `
name: sweep-1
data_path: data.txt
query_path: queries.txt
methods: []
`)
	if _, err := LoadExperimentFile(path); err == nil {
		t.Fatal("expected validation to reject an experiment with no methods")
	}
}

func TestExperimentFileValidate(t *testing.T) {
	cases := []struct {
		name    string
		ef      ExperimentFile
		wantErr bool
	}{
		{
			name: "valid",
			ef: ExperimentFile{
				Name: "a", DataPath: "d", QueryPath: "q",
				Methods: []string{"hnsw"}, Ranges: []float64{0.1},
			},
			wantErr: false,
		},
		{
			name:    "missing name",
			ef:      ExperimentFile{DataPath: "d", QueryPath: "q", Methods: []string{"hnsw"}, Ks: []int{10}},
			wantErr: true,
		},
		{
			name:    "missing data path",
			ef:      ExperimentFile{Name: "a", QueryPath: "q", Methods: []string{"hnsw"}, Ks: []int{10}},
			wantErr: true,
		},
		{
			name:    "no methods",
			ef:      ExperimentFile{Name: "a", DataPath: "d", QueryPath: "q", Ks: []int{10}},
			wantErr: true,
		},
		{
			name:    "no ranges or ks",
			ef:      ExperimentFile{Name: "a", DataPath: "d", QueryPath: "q", Methods: []string{"hnsw"}},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ef.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected an error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestWatchExperimentFileReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeExperimentFile(t, dir, `
name: sweep-1
data_path: data.txt
query_path: queries.txt
methods: [hnsw]
ks: [10]
`)

	changes := make(chan *ExperimentFile, 4)
	w, err := WatchExperimentFile(path, func(ef *ExperimentFile, err error) {
		if err == nil {
			changes <- ef
		}
	})
	if err != nil {
		t.Fatalf("WatchExperimentFile: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte(`
name: sweep-2
data_path: data.txt
query_path: queries.txt
methods: [hnsw]
ks: [20]
`), 0644); err != nil {
		t.Fatalf("rewrite experiment file: %v", err)
	}

	select {
	case ef := <-changes:
		if ef.Name != "sweep-2" {
			t.Errorf("expected reloaded name sweep-2, got %q", ef.Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher to report a change")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeExperimentFile(t, dir, `
name: sweep-1
data_path: d
query_path: q
methods: [hnsw]
ks: [10]
`)

	w, err := WatchExperimentFile(path, func(*ExperimentFile, error) {})
	if err != nil {
		t.Fatalf("WatchExperimentFile: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}
