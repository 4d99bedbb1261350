package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/tilecanvas"
)

// SinkFactory creates a sink for a canvas configuration.
type SinkFactory func(cfg tilecanvas.Config) (Sink, error)

// registry holds registered sinks.
var (
	registryMu sync.RWMutex
	sinks      = make(map[string]SinkFactory)
)

// Register registers a sink factory with the given name.
// This is typically called from init() functions in backend packages.
// If a sink with the same name is already registered, it will be replaced.
func Register(name string, factory SinkFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	sinks[name] = factory
}

// Unregister removes a sink from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(sinks, name)
}

// Available returns the sorted names of registered sinks.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(sinks))
	for name := range sinks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a sink with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := sinks[name]
	return ok
}

// Open creates the sink registered under name for cfg.
func Open(name string, cfg tilecanvas.Config) (Sink, error) {
	registryMu.RLock()
	factory, ok := sinks[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSinkNotAvailable, name)
	}
	s, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend: open %s: %w", name, err)
	}
	tilecanvas.Logger().Info("backend: sink opened", "name", name)
	return s, nil
}

// OpenAll opens every named sink and combines them with Multi. Sinks
// opened before a failure are closed.
func OpenAll(names []string, cfg tilecanvas.Config) (*MultiSink, error) {
	opened := make([]Sink, 0, len(names))
	for _, name := range names {
		s, err := Open(name, cfg)
		if err != nil {
			for _, o := range opened {
				o.Close()
			}
			return nil, err
		}
		opened = append(opened, s)
	}
	m, err := Multi(opened...)
	if err != nil {
		for _, o := range opened {
			o.Close()
		}
		return nil, err
	}
	return m, nil
}
