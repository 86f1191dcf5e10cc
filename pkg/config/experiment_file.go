package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ExperimentFile is the on-disk description of one benchmark campaign: the
// data and query sources, which space/methods to exercise, and the range
// and k sweeps to run. It is the unit pkg/api/rest accepts as a campaign
// submission; cmd/benchmark takes the same settings as flags instead.
type ExperimentFile struct {
	Name       string    `yaml:"name"`
	DataPath   string    `yaml:"data_path"`
	QueryPath  string    `yaml:"query_path"`
	Space      string    `yaml:"space"` // "euclidean", "cosine", "sparse-cosine", "sparse-angular"
	Methods    []string  `yaml:"methods"`
	Ranges     []float64 `yaml:"ranges"`
	Ks         []int     `yaml:"ks"`
	ThreadQty  int       `yaml:"thread_qty"`
	Eps        float32   `yaml:"eps"`
	SampleFrac float64   `yaml:"sample_frac"`
}

// LoadExperimentFile reads and parses a YAML experiment file from path.
func LoadExperimentFile(path string) (*ExperimentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read experiment file: %w", err)
	}

	var ef ExperimentFile
	if err := yaml.Unmarshal(data, &ef); err != nil {
		return nil, fmt.Errorf("config: parse experiment file: %w", err)
	}
	if err := ef.Validate(); err != nil {
		return nil, err
	}
	return &ef, nil
}

// Validate checks that an experiment file names everything a run needs.
func (ef *ExperimentFile) Validate() error {
	if ef.Name == "" {
		return fmt.Errorf("config: experiment file missing name")
	}
	if ef.DataPath == "" || ef.QueryPath == "" {
		return fmt.Errorf("config: experiment %q missing data_path or query_path", ef.Name)
	}
	if len(ef.Methods) == 0 {
		return fmt.Errorf("config: experiment %q names no methods", ef.Name)
	}
	if len(ef.Ranges) == 0 && len(ef.Ks) == 0 {
		return fmt.Errorf("config: experiment %q configures neither ranges nor ks", ef.Name)
	}
	return nil
}

// Watcher reloads an ExperimentFile whenever it changes on disk, handing
// the new value to onChange. It follows the teacher pack's single-file
// fsnotify watch loop (see arx-os's cmd/commands/watcher.go), scoped down
// to one path instead of a recursive directory walk since an experiment
// file is a leaf artifact, not a directory tree.
type Watcher struct {
	path      string
	onChange  func(*ExperimentFile, error)
	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
}

// WatchExperimentFile starts watching path for writes and renames,
// invoking onChange with the freshly parsed file (or the parse error) each
// time it changes. Call Close to stop.
func WatchExperimentFile(path string, onChange func(*ExperimentFile, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{
		path:      path,
		onChange:  onChange,
		fsWatcher: fw,
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			ef, err := LoadExperimentFile(w.path)
			w.onChange(ef, err)
		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)
	return w.fsWatcher.Close()
}
