// Package registry is the process-local mapping from environment id to the
// factory that produces a fresh erased instance of it. It is modelled as an
// explicitly constructed, explicitly initialised store rather than true
// global mutable state: registration happens once at service start, before
// any request is served, and no request mutates the set of keys.
package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/gocnn/cartridge/erased"
)

// Factory produces a fresh erased.Game instance, typically by constructing
// a typed environment and wrapping it with adapter.New.
type Factory func() erased.Game

// Registry is a concurrency-safe env_id -> Factory store.
type Registry struct {
	mu      sync.RWMutex
	log     *zap.Logger
	factory map[string]Factory
}

// New constructs an empty Registry. log may be nil, in which case a no-op
// logger is used.
func New(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:     log,
		factory: make(map[string]Factory),
	}
}

// Register installs factory under envID. A duplicate key is allowed: the
// previous factory is overwritten and a warning is logged.
func (r *Registry) Register(envID string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factory[envID]; exists {
		r.log.Warn("overwriting existing registry entry", zap.String("env_id", envID))
	}
	r.factory[envID] = factory
}

// Create produces a fresh erased instance for envID, or false if envID is
// unregistered.
func (r *Registry) Create(envID string) (erased.Game, bool) {
	r.mu.RLock()
	factory, ok := r.factory[envID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(), true
}

// Contains reports whether envID has a registered factory.
func (r *Registry) Contains(envID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factory[envID]
	return ok
}

// List returns the registered environment ids in no particular order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factory))
	for id := range r.factory {
		ids = append(ids, id)
	}
	return ids
}

// Clear removes every registered factory. Intended for tests.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factory = make(map[string]Factory)
}
