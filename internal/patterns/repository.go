package patterns

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Repository hands out the current pattern table. Readers always see a complete, compiled
// Set; a reload builds and compiles the new Set before swapping it in.
type Repository struct {
	current atomic.Pointer[Set]
	path    string
	logger  *slog.Logger

	mu       sync.Mutex // guards watcher and stopChan
	watcher  *fsnotify.Watcher
	stopChan chan struct{}

	swapMu   sync.Mutex // guards onChange
	onChange func(*Set)
}

// NewRepository creates a repository serving the given set
func NewRepository(set *Set, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Repository{logger: logger}
	if err := r.Replace(set); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRepositoryFromFile creates a repository backed by a YAML artifact. An empty path serves
// the built-in table.
func NewRepositoryFromFile(path string, logger *slog.Logger) (*Repository, error) {
	if path == "" {
		return NewRepository(DefaultSet(), logger)
	}

	set, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	r, err := NewRepository(set, logger)
	if err != nil {
		return nil, fmt.Errorf("pattern artifact %s: %w", path, err)
	}
	r.path = path
	return r, nil
}

// Current returns the active pattern table
func (r *Repository) Current() *Set {
	return r.current.Load()
}

// Path returns the artifact path, empty for the built-in table
func (r *Repository) Path() string {
	return r.path
}

// Replace compiles a copy of set and makes it the active table. The caller's set is left
// untouched, so a set other goroutines already hold can be passed. On error the previous
// table stays.
func (r *Repository) Replace(set *Set) error {
	next := set.Clone()
	if next == nil {
		return fmt.Errorf("invalid pattern set: pattern set cannot be nil")
	}
	if err := next.Compile(); err != nil {
		return fmt.Errorf("invalid pattern set: %w", err)
	}

	r.swapMu.Lock()
	previous := r.current.Swap(next)
	onChange := r.onChange
	r.swapMu.Unlock()

	prevVersion := ""
	if previous != nil {
		prevVersion = previous.Version
	}
	r.logger.Info("pattern table activated", "version", next.Version, "previous", prevVersion,
		"sections", len(next.SectionTypes()))

	if onChange != nil {
		onChange(next)
	}
	return nil
}

// Reload re-reads the artifact file
func (r *Repository) Reload() error {
	if r.path == "" {
		return fmt.Errorf("no pattern artifact configured for reload")
	}

	set, err := LoadFile(r.path)
	if err != nil {
		return err
	}
	return r.Replace(set)
}

// SetOnChange registers a callback invoked after each successful swap
func (r *Repository) SetOnChange(fn func(*Set)) {
	r.swapMu.Lock()
	defer r.swapMu.Unlock()
	r.onChange = fn
}

// Watch reloads the artifact whenever it is written or replaced. The parent directory is
// watched because tools commonly write a temp file and rename it over the artifact.
func (r *Repository) Watch() error {
	if r.path == "" {
		return fmt.Errorf("no pattern artifact configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	r.mu.Lock()
	r.watcher = watcher
	r.stopChan = make(chan struct{})
	r.mu.Unlock()

	go r.watchLoop(watcher, r.stopChan)
	return nil
}

func (r *Repository) watchLoop(watcher *fsnotify.Watcher, stop chan struct{}) {
	target := filepath.Clean(r.path)
	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := r.Reload(); err != nil {
				r.logger.Warn("pattern reload failed, keeping previous table", "path", r.path, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("pattern watcher error", "error", err)
		}
	}
}

// StopWatch stops watching the artifact
func (r *Repository) StopWatch() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

// LoadFile reads a YAML pattern artifact. The returned set is validated but not compiled.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pattern artifact: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML pattern artifact
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing pattern artifact: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// WriteFile encodes the set as YAML and atomically replaces path with it
func WriteFile(path string, set *Set) error {
	if err := set.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(set)
	if err != nil {
		return fmt.Errorf("encoding pattern artifact: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".patterns-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing pattern artifact: %w", err)
	}
	return nil
}
