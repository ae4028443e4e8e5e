package vitals

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type profileFile struct {
	Profiles Table `yaml:"profiles"`
}

// LoadProfilesFromBytes parses a YAML threshold document. Profiles present
// in the file override the defaults; vitals the file omits keep their
// built-in boundaries. A zero critical_high is treated as unbounded.
func LoadProfilesFromBytes(data []byte) (Table, error) {
	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse threshold profiles: %w", err)
	}

	table := DefaultProfiles()
	for name, p := range f.Profiles {
		if p == nil {
			return nil, fmt.Errorf("profile %q is empty", name)
		}
		if p.CriticalHigh == 0 {
			if def, ok := table[name]; ok {
				p.CriticalHigh = def.CriticalHigh
			}
		}
		if err := p.Validate(name); err != nil {
			return nil, err
		}
		table[name] = p
	}
	return table, nil
}

// LoadProfilesFromFile reads and parses a YAML threshold file.
func LoadProfilesFromFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read threshold file: %w", err)
	}
	return LoadProfilesFromBytes(data)
}

// Registry holds the active threshold table and swaps it atomically when
// the backing file changes. All readers see a consistent table for the
// duration of one classification.
type Registry struct {
	mu    sync.RWMutex
	table Table
	path  string
}

// NewRegistry returns a registry seeded with the built-in defaults. If
// path is non-empty the file is loaded immediately and an error returned
// when it is missing or invalid.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{table: DefaultProfiles(), path: path}
	if path != "" {
		table, err := LoadProfilesFromFile(path)
		if err != nil {
			return nil, err
		}
		r.table = table
	}
	return r, nil
}

// Current returns the active threshold table.
func (r *Registry) Current() Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table
}

// Reload re-reads the backing file. On failure the previous table stays
// active.
func (r *Registry) Reload() error {
	if r.path == "" {
		return nil
	}
	table, err := LoadProfilesFromFile(r.path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.table = table
	r.mu.Unlock()
	return nil
}

// Watch reloads the registry whenever the backing file is rewritten. It
// blocks until ctx is cancelled. A registry without a backing file returns
// immediately.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so atomic rename-into-place saves are seen.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("failed to watch threshold file: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(r.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := r.Reload(); err != nil {
				log.Printf("threshold reload failed, keeping previous table: %v", err)
				continue
			}
			log.Printf("threshold profiles reloaded from %s", r.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("threshold watcher error: %v", err)
		}
	}
}
