package sink

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrSinkNotFound is returned when a requested sink cannot be found.
var ErrSinkNotFound = errors.New("sink not found")

// Manager manages sink discovery and access.
type Manager struct {
	sinkDir string
	sinks   map[string]*Sink
	mu      sync.RWMutex
}

// NewManager creates a new sink Manager with the given sink directory.
func NewManager(sinkDir string) *Manager {
	return &Manager{
		sinkDir: sinkDir,
		sinks:   make(map[string]*Sink),
	}
}

// Discover scans the sink directory for sink.json manifests. Each
// subdirectory is expected to be one sink.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sinks = make(map[string]*Sink)

	info, err := os.Stat(m.sinkDir)
	if os.IsNotExist(err) {
		return nil // no sink directory, nothing to discover
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.sinkDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		sinkPath := filepath.Join(m.sinkDir, entry.Name())
		manifestPath := filepath.Join(sinkPath, "sink.json")

		manifestData, err := os.ReadFile(manifestPath)
		if err != nil {
			continue // skip sinks we can't read
		}

		var manifest Manifest
		if err := json.Unmarshal(manifestData, &manifest); err != nil {
			continue // skip sinks with invalid JSON
		}
		if manifest.Name == "" || manifest.Executable == "" {
			continue
		}

		m.sinks[manifest.Name] = &Sink{
			Manifest:   manifest,
			Path:       sinkPath,
			Executable: filepath.Join(sinkPath, manifest.Executable),
		}
	}

	return nil
}

// Get returns a sink by name, or ErrSinkNotFound.
func (m *Manager) Get(name string) (*Sink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sinks[name]
	if !ok {
		return nil, ErrSinkNotFound
	}

	return s, nil
}

// List returns all discovered sinks.
func (m *Manager) List() []*Sink {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sinks := make([]*Sink, 0, len(m.sinks))
	for _, s := range m.sinks {
		sinks = append(sinks, s)
	}

	return sinks
}

// SinkDir returns the sink directory path.
func (m *Manager) SinkDir() string {
	return m.sinkDir
}
