package rules

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrRuleNotFound is returned when a rule name is not registered.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrRuleAlreadyRegistered is returned when registering a duplicate rule name.
	ErrRuleAlreadyRegistered = errors.New("rule already registered")
)

// Registry maps rule names to evaluator factories. It is populated by
// explicit registration calls at process startup and consulted by the engine
// only during build, never during decide. Lookup fails closed: an absent
// name is a hard construction failure.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers a factory under a rule name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("rule name cannot be empty")
	}
	if factory == nil {
		return errors.New("rule factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return ErrRuleAlreadyRegistered
	}
	r.factories[name] = factory
	return nil
}

// Lookup retrieves the factory for a rule name.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, ErrRuleNotFound
	}
	return factory, nil
}

// Names returns all registered rule names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global default registry.
var defaultRegistry *Registry
var registryOnce sync.Once

// DefaultRegistry returns the process-wide default registry.
func DefaultRegistry() *Registry {
	registryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register registers a factory in the default registry.
func Register(name string, factory Factory) error {
	return DefaultRegistry().Register(name, factory)
}
