// Package registry maps job names to factories that build them.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ripline/ripline/pkg/batch/core/job"
	"github.com/ripline/ripline/pkg/batch/support/logger"
)

// JobFactory builds a fresh Job instance. Factories are invoked per
// launch so jobs never share reader or writer state between runs.
type JobFactory func() (job.Job, error)

// JobRegistry is a concurrency-safe name-to-factory map.
type JobRegistry struct {
	mu        sync.RWMutex
	factories map[string]JobFactory
}

// NewJobRegistry returns an empty registry.
func NewJobRegistry() *JobRegistry {
	return &JobRegistry{factories: make(map[string]JobFactory)}
}

// Register adds a factory under the given job name. Registering the same
// name twice is an error.
func (r *JobRegistry) Register(name string, factory JobFactory) error {
	if name == "" {
		return fmt.Errorf("job name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("job factory for '%s' must not be nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("job '%s' is already registered", name)
	}
	r.factories[name] = factory
	logger.Debugf("Registered job '%s'.", name)
	return nil
}

// Get builds the job registered under name.
func (r *JobRegistry) Get(name string) (job.Job, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("job '%s' is not registered", name)
	}
	j, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to build job '%s': %w", name, err)
	}
	if j.Name() != name {
		return nil, fmt.Errorf("job factory for '%s' produced job named '%s'", name, j.Name())
	}
	return j, nil
}

// Names returns the registered job names in sorted order.
func (r *JobRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
